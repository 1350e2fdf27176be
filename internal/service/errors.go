// Package service implements the business operations of the API on top of
// the store interfaces. Every read or write of a user-scoped resource passes
// through an ownership check here; handlers never touch stores directly.
package service

import "errors"

// Common service errors.
var (
	// ErrForbidden is returned when an authenticated user operates on a
	// resource owned by someone else. Admins are not exempt: roles gate
	// administrative endpoints, not resource ownership.
	ErrForbidden = errors.New("resource belongs to another user")
)
