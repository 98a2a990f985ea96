package register

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity is the capability surface the authorization layer needs from a
// user record. Plain data structs implement it; there is no framework base
// type to inherit from.
type Identity interface {
	Identifier() string
	Roles() []string
	IsActive() bool
}

// ResourceClient talks to the remote resource server that owns user records.
// Status codes are forwarded faithfully; transport failures surface as a
// non-nil error, never as a synthesized status.
type ResourceClient interface {
	CreateUser(ctx context.Context, body []byte, credential string) (ResourceResult, error)
	GetUser(ctx context.Context, id string, credential string) (ResourceResult, error)
	ReplaceUser(ctx context.Context, id string, body []byte, credential string, etag string) (ResourceResult, error)
}

// Mailer submits a fully composed message synchronously. Implementations
// must return an error distinguishable from workflow errors on transport or
// protocol failure.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

type MailMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] REGISTER "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] REGISTER "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] REGISTER "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] REGISTER "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
