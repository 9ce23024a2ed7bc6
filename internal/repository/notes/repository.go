package notes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kotche/carrot-notes/infrastructure/tracing"
	"github.com/kotche/carrot-notes/internal/docstore"
	"github.com/kotche/carrot-notes/internal/model"
)

const (
	collection = "notes"

	fieldUserID    = "userId"
	fieldTitle     = "title"
	fieldNote      = "note"
	fieldCompleted = "completed"
	fieldCreatedAt = "createdAt"
	fieldCategory  = "category"

	// ISO-8601 in UTC with millisecond precision, e.g. 2025-01-01T00:00:00.000Z
	createdAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

type DefaultRepository struct {
	store docstore.Store
}

func NewDefaultRepository(store docstore.Store) *DefaultRepository {
	return &DefaultRepository{store: store}
}

// FetchNotes returns the user's notes, newest first.
func (d *DefaultRepository) FetchNotes(ctx context.Context, userID model.UserID) ([]model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "FetchNotes_repo")
	defer span.End()

	docs, err := d.store.Query(ctx, collection, docstore.ByField(fieldUserID, string(userID)))
	if err != nil {
		return nil, fmt.Errorf("failed to query notes for user '%s': %w", userID, err)
	}

	notes := make([]model.Note, 0, len(docs))
	for _, doc := range docs {
		notes = append(notes, decodeNote(doc))
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})

	return notes, nil
}

func (d *DefaultRepository) AddNote(ctx context.Context, note model.Note) (model.NoteID, error) {
	id, err := d.store.Insert(ctx, collection, encodeNote(note))
	if err != nil {
		return "", fmt.Errorf("failed to create note: %w", err)
	}
	return model.NoteID(id), nil
}

func (d *DefaultRepository) UpdateNote(ctx context.Context, noteID model.NoteID, update model.NoteUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	fields := docstore.Data{}
	if update.Title != nil {
		fields[fieldTitle] = *update.Title
	}
	if update.Note != nil {
		fields[fieldNote] = *update.Note
	}

	return d.update(ctx, noteID, fields)
}

func (d *DefaultRepository) ToggleStatus(ctx context.Context, noteID model.NoteID, completed bool) error {
	return d.update(ctx, noteID, docstore.Data{fieldCompleted: completed})
}

func (d *DefaultRepository) DeleteNote(ctx context.Context, noteID model.NoteID) error {
	if err := d.store.Delete(ctx, collection, string(noteID)); err != nil {
		return fmt.Errorf("failed to delete note '%s': %w", noteID, err)
	}
	return nil
}

func (d *DefaultRepository) update(ctx context.Context, noteID model.NoteID, fields docstore.Data) error {
	if err := d.store.Update(ctx, collection, string(noteID), fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return model.ErrNoteNotFound
		}
		return fmt.Errorf("failed to update note '%s': %w", noteID, err)
	}
	return nil
}

func encodeNote(note model.Note) docstore.Data {
	data := docstore.Data{
		fieldNote:      note.Note,
		fieldCompleted: note.Completed,
		fieldCreatedAt: FormatCreatedAt(note.CreatedAt),
		fieldUserID:    string(note.UserID),
	}
	if note.Title != "" {
		data[fieldTitle] = note.Title
	}
	if note.Category != "" {
		data[fieldCategory] = note.Category
	}
	return data
}

// decodeNote tolerates documents written by other clients: fields of the
// wrong type are treated as absent.
func decodeNote(doc docstore.Document) model.Note {
	note := model.Note{
		ID:        model.NoteID(doc.ID),
		Completed: doc.Data.Bool(fieldCompleted),
	}
	note.Title, _ = doc.Data.String(fieldTitle)
	note.Note, _ = doc.Data.String(fieldNote)
	note.Category, _ = doc.Data.String(fieldCategory)

	if userID, ok := doc.Data.String(fieldUserID); ok {
		note.UserID = model.UserID(userID)
	}
	if createdAt, ok := doc.Data.String(fieldCreatedAt); ok {
		note.CreatedAt = parseCreatedAt(createdAt)
	}

	return note
}

func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(createdAtLayout)
}

// parseCreatedAt returns the zero time for unparseable values, which sorts
// them after every valid note.
func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
