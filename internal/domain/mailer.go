package domain

import "context"

// Mailer delivers account emails. From the core's perspective delivery is
// fire-and-forget: a failed send is logged by the caller and never rolls back
// the operation that triggered it.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}
