package auth

import (
	"errors"

	"github.com/kotche/carrot-notes/internal/model"
)

var (
	ErrInvalidEmail  = errors.New("invalid email")
	ErrEmailInUse    = errors.New("email already in use")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrWeakPassword  = errors.New("weak password")
	ErrNoUser        = model.ErrNoUser
)

// Message turns an auth error into text that can be shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWrongPassword):
		return "The current password is incorrect."
	case errors.Is(err, ErrWeakPassword):
		return "Password should be at least 6 characters."
	case errors.Is(err, ErrUserNotFound):
		return "No account found with this email."
	case errors.Is(err, ErrEmailInUse):
		return "This email is already registered."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, ErrNoUser):
		return "No user is currently signed in."
	default:
		return "An unexpected error occurred. Please try again."
	}
}
