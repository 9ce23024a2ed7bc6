package notes

import (
	"context"
	"log/slog"

	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/repository/notes"
	"github.com/kotche/carrot-notes/internal/service/events"
	"github.com/kotche/carrot-notes/internal/validation"
)

const (
	MaxTitleLength = 80
	MaxNoteLength  = 200
)

type noteInput struct {
	UserID model.UserID `doc:"userId" validate:"required"`
	Title  string       `doc:"title" validate:"max=80"`
	Note   string       `doc:"note" validate:"max=200"`
}

type DefaultService struct {
	repo      notes.Repository
	publisher events.Publisher
	validate  *validation.Validator
	logger    *slog.Logger
}

func NewDefaultService(repo notes.Repository, publisher events.Publisher, logger *slog.Logger) *DefaultService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &DefaultService{
		repo:      repo,
		publisher: publisher,
		validate:  validation.New(),
		logger:    logger,
	}
}

func (d *DefaultService) FetchNotes(ctx context.Context, userID model.UserID) []model.Note {
	fetched, err := d.repo.FetchNotes(ctx, userID)
	if err != nil {
		d.logger.Error("error fetching notes", "user_id", userID, "error", err)
		return []model.Note{}
	}
	return fetched
}

func (d *DefaultService) FetchNotesResult(ctx context.Context, userID model.UserID) ([]model.Note, error) {
	return d.repo.FetchNotes(ctx, userID)
}

func (d *DefaultService) AddNote(ctx context.Context, note model.Note) error {
	if err := d.validate.Validate(noteInput{UserID: note.UserID, Title: note.Title, Note: note.Note}); err != nil {
		return err
	}

	noteID, err := d.repo.AddNote(ctx, note)
	if err != nil {
		return err
	}

	event := events.New(model.EventNoteCreated)
	event.UserID = note.UserID
	event.NoteID = noteID
	event.Category = note.Category
	d.publish(ctx, event)

	return nil
}

func (d *DefaultService) UpdateNote(ctx context.Context, noteID model.NoteID, update model.NoteUpdate) error {
	if err := d.repo.UpdateNote(ctx, noteID, update); err != nil {
		return err
	}

	if !update.IsEmpty() {
		event := events.New(model.EventNoteUpdated)
		event.NoteID = noteID
		d.publish(ctx, event)
	}
	return nil
}

func (d *DefaultService) ToggleStatus(ctx context.Context, noteID model.NoteID, completed bool) error {
	if err := d.repo.ToggleStatus(ctx, noteID, completed); err != nil {
		return err
	}

	event := events.New(model.EventNoteToggled)
	event.NoteID = noteID
	d.publish(ctx, event)
	return nil
}

func (d *DefaultService) DeleteNote(ctx context.Context, noteID model.NoteID) error {
	if err := d.repo.DeleteNote(ctx, noteID); err != nil {
		return err
	}

	event := events.New(model.EventNoteDeleted)
	event.NoteID = noteID
	d.publish(ctx, event)
	return nil
}

// publish never fails the mutation that triggered it.
func (d *DefaultService) publish(ctx context.Context, event model.Event) {
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish event", "type", event.Type, "note_id", event.NoteID, "error", err)
	}
}
