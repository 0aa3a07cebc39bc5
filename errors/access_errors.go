// api/errors/access_errors.go
package errors

import "errors"

// ErrInvalidRole means a role was compared against a role set it does not
// belong to. This is a deployment/programming error, never a user-facing
// denial, and must not be collapsed into a 403.
var ErrInvalidRole = errors.New("invalid role")

// ForbiddenError is a fatal denial: the caller definitively lacks the
// membership or entitlement the route requires, and the reason is safe to
// surface. Plain boolean denials never carry a reason.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

var (
	ErrNotOrgMember = &ForbiddenError{Reason: "user is not a member of the organization"}

	ErrAdminAPIDisabled = &ForbiddenError{Reason: "organization does not have Admin API access"}

	ErrNotTeamMember = &ForbiddenError{Reason: "user is not a member of the team"}

	// Combined org+team scope: the caller is in the org but neither in the
	// team nor privileged enough at the org level to bypass it.
	ErrNotTeamMemberNorOrgAdmin = &ForbiddenError{Reason: "user is not part of the team and/or, is not an admin nor an owner of the organization"}

	// Combined org+team scope: no org membership at all.
	ErrNotPartOfOrg = &ForbiddenError{Reason: "user is not part of the organization"}
)
