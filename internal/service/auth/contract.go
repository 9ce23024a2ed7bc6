package auth

import (
	"context"

	"github.com/kotche/carrot-notes/internal/model"
)

type (
	Service interface {
		SignUp(ctx context.Context, email, password string) (*Session, error)
		SignIn(ctx context.Context, email, password string) (*Session, error)
		Reauthenticate(ctx context.Context, session *Session, password string) error
		UpdatePassword(ctx context.Context, session *Session, newPassword string) error
		ChangePassword(ctx context.Context, session *Session, currentPassword, newPassword string) error
	}

	// Session is the signed-in identity. A nil *Session means nobody is
	// signed in.
	Session struct {
		userID model.UserID
		email  string
	}
)

func NewSession(userID model.UserID, email string) *Session {
	return &Session{userID: userID, email: email}
}

func (s *Session) UserID() (model.UserID, bool) {
	if s == nil {
		return "", false
	}
	return s.userID, true
}

func (s *Session) Email() string {
	if s == nil {
		return ""
	}
	return s.email
}
