package notes

import (
	"context"

	"github.com/kotche/carrot-notes/internal/model"
)

type (
	Service interface {
		// FetchNotes never fails: errors are logged and an empty slice returned.
		FetchNotes(ctx context.Context, userID model.UserID) []model.Note
		FetchNotesResult(ctx context.Context, userID model.UserID) ([]model.Note, error)
		AddNote(ctx context.Context, note model.Note) error
		UpdateNote(ctx context.Context, noteID model.NoteID, update model.NoteUpdate) error
		ToggleStatus(ctx context.Context, noteID model.NoteID, completed bool) error
		DeleteNote(ctx context.Context, noteID model.NoteID) error
	}
)
