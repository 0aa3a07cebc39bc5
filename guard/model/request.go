package model

import "github.com/schedly/api/model"

// AccessRequest is one authorization question: may this principal act on
// this org/team scope at the given minimum role? OrgID and TeamID are
// optional; a nil Principal means the request is unauthenticated.
type AccessRequest struct {
	Principal    *model.Principal
	OrgID        *int64
	TeamID       *int64
	RequiredRole Role
}
