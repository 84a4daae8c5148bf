package user_services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// RegistrationError lists the rejected registration fields.
type RegistrationError struct {
	Fields map[string]string
}

func (e *RegistrationError) Error() string {
	for _, field := range []string{"username", "password", "password_confirm"} {
		if msg, ok := e.Fields[field]; ok {
			return "registration failed: " + field + ": " + msg
		}
	}
	return "registration failed"
}

// mask keeps the first characters of an identifier for logs.
func mask(s string) string {
	return s[:min(4, len(s))] + "****"
}
