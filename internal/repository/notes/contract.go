package notes

import (
	"context"

	"github.com/kotche/carrot-notes/internal/model"
)

type (
	Repository interface {
		FetchNotes(ctx context.Context, userID model.UserID) ([]model.Note, error)
		AddNote(ctx context.Context, note model.Note) (model.NoteID, error)
		UpdateNote(ctx context.Context, noteID model.NoteID, update model.NoteUpdate) error
		ToggleStatus(ctx context.Context, noteID model.NoteID, completed bool) error
		DeleteNote(ctx context.Context, noteID model.NoteID) error
	}
)
