package model

// Evidence scopes recorded on a decision.
const (
	ScopeOrg     = "org"
	ScopeTeam    = "team"
	ScopeOrgTeam = "org+team"
)

// AccessDecision is the non-fatal outcome of an authorization check. Fatal
// denials (not a member, Admin API disabled) are surfaced as
// *errors.ForbiddenError instead and never reach a decision value.
type AccessDecision struct {
	Allowed bool `json:"allowed"`
	// Scope names the evidence used to decide: org, team, org+team, or
	// empty when the decision was made before any membership lookup.
	Scope string `json:"scope,omitempty"`
	// Cached is true when the decision was served from the decision cache.
	Cached bool `json:"cached,omitempty"`
}
