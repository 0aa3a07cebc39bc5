// api/errors/org_errors.go
package errors

import "errors"

var (
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrOrganizationConflict    = errors.New("organization conflict")
	ErrInvalidOrganizationData = errors.New("invalid organization data")

	ErrTeamNotFound    = errors.New("team not found")
	ErrTeamConflict    = errors.New("team conflict")
	ErrInvalidTeamData = errors.New("invalid team data")
)
