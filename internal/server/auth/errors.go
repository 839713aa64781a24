package auth

import "errors"

// Sentinels matched by errors.Is against an *Error.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
)

// Kind discriminates login failures.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidPassword
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidPassword:
		return "invalid_password"
	}
	return "unknown"
}

// Error is returned by credential checks. Both kinds render the same
// public message so callers cannot tell which one happened.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	return "Invalid password"
}

func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrUserNotFound
	case KindInvalidPassword:
		return target == ErrInvalidPassword
	}
	return false
}
