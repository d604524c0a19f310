// Package auth owns caller identity: password hashing, token issuance and
// verification, the account service behind /register, /login and
// /token/refresh, and the ownership gate applied to center mutations.
package auth

import "errors"

var (
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided")
	ErrInvalidToken           = errors.New("given token not valid")
	ErrInvalidCredentials     = errors.New("no active account found with the given credentials")
	ErrForbidden              = errors.New("you do not have permission to perform this action")
)

// Caller is the authenticated principal of a request.
type Caller struct {
	ID       uint64
	Username string
	IsStaff  bool
}

// Authorize decides whether caller may modify or delete a record owned by
// ownerID.  Owners may touch their own records and staff may touch any.
func Authorize(caller *Caller, ownerID uint64) error {
	if caller == nil {
		return ErrAuthenticationRequired
	}
	if caller.IsStaff || caller.ID == ownerID {
		return nil
	}
	return ErrForbidden
}
