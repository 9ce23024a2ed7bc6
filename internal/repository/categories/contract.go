package categories

import (
	"context"

	"github.com/kotche/carrot-notes/internal/model"
)

type (
	Repository interface {
		FetchCategories(ctx context.Context, userID model.UserID) ([]string, error)
		AddCategories(ctx context.Context, userID model.UserID, labels []string) ([]string, error)
		UpdateCategory(ctx context.Context, userID model.UserID, oldLabel, newLabel string) error
		DeleteCategory(ctx context.Context, userID model.UserID, label string) error
	}
)
