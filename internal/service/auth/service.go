// Package auth is the credential provider: accounts live in the users
// collection with argon2id password hashes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kotche/carrot-notes/internal/docstore"
	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/validation"
)

const (
	collection = "users"

	fieldEmail        = "email"
	fieldPasswordHash = "passwordHash"
	fieldCreatedAt    = "createdAt"

	minPasswordLength = 6
)

type emailInput struct {
	Email string `doc:"email" validate:"required,email"`
}

type DefaultService struct {
	store    docstore.Store
	validate *validation.Validator
	logger   *slog.Logger
}

func NewDefaultService(store docstore.Store, logger *slog.Logger) *DefaultService {
	return &DefaultService{store: store, validate: validation.New(), logger: logger}
}

// SignUp creates an account. Email uniqueness is checked before the insert,
// so two concurrent sign-ups with the same email can both succeed.
func (d *DefaultService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := d.checkCredentials(email, password); err != nil {
		return nil, err
	}
	if len([]rune(password)) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	docs, err := d.store.Query(ctx, collection, docstore.ByField(fieldEmail, email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(docs) > 0 {
		return nil, ErrEmailInUse
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	id, err := d.store.Insert(ctx, collection, docstore.Data{
		fieldEmail:        email,
		fieldPasswordHash: hash,
		fieldCreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	d.logger.Info("user signed up", "user_id", id)
	return NewSession(model.UserID(id), email), nil
}

func (d *DefaultService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := d.checkCredentials(email, password); err != nil {
		return nil, err
	}

	doc, err := d.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	hash, _ := doc.Data.String(fieldPasswordHash)
	if !verifyPassword(hash, password) {
		return nil, ErrWrongPassword
	}

	return NewSession(model.UserID(doc.ID), email), nil
}

// Reauthenticate verifies the session owner's current password.
func (d *DefaultService) Reauthenticate(ctx context.Context, session *Session, password string) error {
	if _, ok := session.UserID(); !ok {
		return ErrNoUser
	}

	doc, err := d.findByEmail(ctx, session.Email())
	if err != nil {
		return err
	}

	hash, _ := doc.Data.String(fieldPasswordHash)
	if !verifyPassword(hash, password) {
		return ErrWrongPassword
	}
	return nil
}

func (d *DefaultService) UpdatePassword(ctx context.Context, session *Session, newPassword string) error {
	userID, ok := session.UserID()
	if !ok {
		return ErrNoUser
	}
	if len([]rune(newPassword)) < minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err = d.store.Update(ctx, collection, string(userID), docstore.Data{fieldPasswordHash: hash}); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ChangePassword re-authenticates with the current password, then stores the
// new one.
func (d *DefaultService) ChangePassword(ctx context.Context, session *Session, currentPassword, newPassword string) error {
	if err := d.Reauthenticate(ctx, session, currentPassword); err != nil {
		return err
	}
	if err := d.UpdatePassword(ctx, session, newPassword); err != nil {
		return err
	}

	userID, _ := session.UserID()
	d.logger.Info("password changed", "user_id", userID)
	return nil
}

func (d *DefaultService) checkCredentials(email, password string) error {
	if err := d.validate.Validate(emailInput{Email: email}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	if password == "" {
		return ErrWeakPassword
	}
	return nil
}

func (d *DefaultService) findByEmail(ctx context.Context, email string) (docstore.Document, error) {
	docs, err := d.store.Query(ctx, collection, docstore.ByField(fieldEmail, email))
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(docs) == 0 {
		return docstore.Document{}, ErrUserNotFound
	}
	return docs[0], nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
