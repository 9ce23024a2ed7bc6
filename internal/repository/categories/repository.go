package categories

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kotche/carrot-notes/internal/docstore"
	"github.com/kotche/carrot-notes/internal/model"
)

const (
	collection = "categories"

	fieldUserID   = "userId"
	fieldCategory = "category"
)

// DefaultRepository keeps one document per (userId, category) pair.
// Uniqueness is enforced here, not by the store, so concurrent writers can
// still produce duplicates; reads collapse them.
type DefaultRepository struct {
	store docstore.Store
	tag   language.Tag
}

func NewDefaultRepository(store docstore.Store) *DefaultRepository {
	return &DefaultRepository{store: store, tag: language.Und}
}

// WithLocale sets the language used to order labels.
func (d *DefaultRepository) WithLocale(tag language.Tag) *DefaultRepository {
	d.tag = tag
	return d
}

// FetchCategories returns the user's unique labels in locale order.
func (d *DefaultRepository) FetchCategories(ctx context.Context, userID model.UserID) ([]string, error) {
	labels, err := d.existing(ctx, userID)
	if err != nil {
		return nil, err
	}

	unique := make([]string, 0, len(labels))
	for label := range labels {
		unique = append(unique, label)
	}

	collate.New(d.tag).SortStrings(unique)
	return unique, nil
}

// AddCategories inserts the labels the user does not have yet and returns
// the ones it inserted.
func (d *DefaultRepository) AddCategories(ctx context.Context, userID model.UserID, labels []string) ([]string, error) {
	existing, err := d.existing(ctx, userID)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, label := range labels {
		if _, ok := existing[label]; ok {
			continue
		}
		existing[label] = struct{}{}

		if _, err = d.store.Insert(ctx, collection, docstore.Data{
			fieldUserID:   string(userID),
			fieldCategory: label,
		}); err != nil {
			return added, fmt.Errorf("failed to add category '%s' for user '%s': %w", label, userID, err)
		}
		added = append(added, label)
	}

	return added, nil
}

// UpdateCategory renames every matching document. Notes keep the old label.
func (d *DefaultRepository) UpdateCategory(ctx context.Context, userID model.UserID, oldLabel, newLabel string) error {
	return d.forEachMatch(ctx, userID, oldLabel, func(ctx context.Context, id string) error {
		if err := d.store.Update(ctx, collection, id, docstore.Data{fieldCategory: newLabel}); err != nil {
			return fmt.Errorf("failed to rename category '%s' to '%s': %w", oldLabel, newLabel, err)
		}
		return nil
	})
}

// DeleteCategory removes every matching document. Notes keep the label.
func (d *DefaultRepository) DeleteCategory(ctx context.Context, userID model.UserID, label string) error {
	return d.forEachMatch(ctx, userID, label, func(ctx context.Context, id string) error {
		if err := d.store.Delete(ctx, collection, id); err != nil {
			return fmt.Errorf("failed to delete category '%s': %w", label, err)
		}
		return nil
	})
}

// forEachMatch runs fn for all documents of (userID, label) at once and
// waits for every call to finish.
func (d *DefaultRepository) forEachMatch(ctx context.Context, userID model.UserID, label string, fn func(context.Context, string) error) error {
	docs, err := d.store.Query(ctx, collection, docstore.Where{
		fieldUserID:   string(userID),
		fieldCategory: label,
	})
	if err != nil {
		return fmt.Errorf("failed to query category '%s' for user '%s': %w", label, userID, err)
	}

	var g errgroup.Group
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			return fn(ctx, doc.ID)
		})
	}
	return g.Wait()
}

func (d *DefaultRepository) existing(ctx context.Context, userID model.UserID) (map[string]struct{}, error) {
	docs, err := d.store.Query(ctx, collection, docstore.ByField(fieldUserID, string(userID)))
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for user '%s': %w", userID, err)
	}

	labels := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if label, ok := doc.Data.String(fieldCategory); ok {
			labels[label] = struct{}{}
		}
	}
	return labels, nil
}
