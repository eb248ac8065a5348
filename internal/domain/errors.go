package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")

	// ErrEmailNotVerified and ErrPendingApproval are the two halves of the
	// double lock. They are deliberately distinct so clients can tell "go
	// check your inbox" apart from "wait for an administrator".
	ErrEmailNotVerified = errors.New("email not verified")
	ErrPendingApproval  = errors.New("account pending approval")

	// ErrInvalidToken covers expired, tampered, and wrong-purpose verification
	// tokens alike; callers must not be able to distinguish the cause.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrNotOwner is returned when an existing resource belongs to someone
	// else. Distinct from ErrNotFound so the two map to different HTTP codes.
	ErrNotOwner = errors.New("not the resource owner")
)
