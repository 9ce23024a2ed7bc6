package screens

import (
	"context"
	"io"
	"log/slog"

	"github.com/kotche/carrot-notes/internal/model"
)

type user model.UserID

func (u user) UserID() (model.UserID, bool) {
	return model.UserID(u), u != ""
}

type updateCall struct {
	id     model.NoteID
	update model.NoteUpdate
}

type toggleCall struct {
	id        model.NoteID
	completed bool
}

// fakeNotes records every call made by a screen.
type fakeNotes struct {
	stored  []model.Note
	added   []model.Note
	updated []updateCall
	toggled []toggleCall
	deleted []model.NoteID
	fetches int
	err     error

	onFetch func()
}

func (f *fakeNotes) FetchNotes(ctx context.Context, userID model.UserID) []model.Note {
	notes, err := f.FetchNotesResult(ctx, userID)
	if err != nil {
		return []model.Note{}
	}
	return notes
}

func (f *fakeNotes) FetchNotesResult(_ context.Context, userID model.UserID) ([]model.Note, error) {
	f.fetches++
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.err != nil {
		return nil, f.err
	}

	var out []model.Note
	for _, note := range f.stored {
		if note.UserID == userID {
			out = append(out, note)
		}
	}
	return out, nil
}

func (f *fakeNotes) AddNote(_ context.Context, note model.Note) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, note)
	note.ID = model.NoteID("n" + string(rune('0'+len(f.stored))))
	f.stored = append(f.stored, note)
	return nil
}

func (f *fakeNotes) UpdateNote(_ context.Context, noteID model.NoteID, update model.NoteUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.updated = append(f.updated, updateCall{id: noteID, update: update})
	return nil
}

func (f *fakeNotes) ToggleStatus(_ context.Context, noteID model.NoteID, completed bool) error {
	if f.err != nil {
		return f.err
	}
	f.toggled = append(f.toggled, toggleCall{id: noteID, completed: completed})
	return nil
}

func (f *fakeNotes) DeleteNote(_ context.Context, noteID model.NoteID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, noteID)
	kept := f.stored[:0]
	for _, note := range f.stored {
		if note.ID != noteID {
			kept = append(kept, note)
		}
	}
	f.stored = kept
	return nil
}

type fakeCategories struct {
	labels []string
	added  [][]string
}

func (f *fakeCategories) FetchCategories(context.Context, model.UserID) []string {
	return append([]string(nil), f.labels...)
}

func (f *fakeCategories) FetchCategoriesResult(context.Context, model.UserID) ([]string, error) {
	return append([]string(nil), f.labels...), nil
}

func (f *fakeCategories) AddCategories(_ context.Context, _ model.UserID, labels []string) {
	f.added = append(f.added, labels)
	f.labels = append(f.labels, labels...)
}

func (f *fakeCategories) UpdateCategory(context.Context, model.UserID, string, string) {}

func (f *fakeCategories) DeleteCategory(context.Context, model.UserID, string) {}

type fakeNav struct {
	back int
}

func (n *fakeNav) GoBack() { n.back++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
