package model

import "time"

type User struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	IsSystemAdmin bool      `json:"is_system_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Principal is the authenticated caller, resolved once per request by the
// auth middleware. A nil *Principal means the request is unauthenticated.
type Principal struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	IsSystemAdmin bool   `json:"is_system_admin"`
}
