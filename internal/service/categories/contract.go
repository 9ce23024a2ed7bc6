package categories

import (
	"context"

	"github.com/kotche/carrot-notes/internal/model"
)

type (
	// Service surfaces backend failures to the user through an Alerter
	// instead of returning them.
	Service interface {
		FetchCategories(ctx context.Context, userID model.UserID) []string
		FetchCategoriesResult(ctx context.Context, userID model.UserID) ([]string, error)
		AddCategories(ctx context.Context, userID model.UserID, labels []string)
		UpdateCategory(ctx context.Context, userID model.UserID, oldLabel, newLabel string)
		DeleteCategory(ctx context.Context, userID model.UserID, label string)
	}

	// Alerter shows a blocking, user-dismissible message.
	Alerter interface {
		Alert(ctx context.Context, title, message string)
	}

	AlerterFunc func(ctx context.Context, title, message string)
)

func (f AlerterFunc) Alert(ctx context.Context, title, message string) {
	f(ctx, title, message)
}
