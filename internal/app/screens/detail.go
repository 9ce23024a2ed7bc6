package screens

import (
	"context"
	"strings"

	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/service/notes"
)

type Detail struct {
	note  model.Note
	notes notes.Service
	nav   Navigator

	editTitle        string
	editNote         string
	confirmingDelete bool
}

func NewDetail(note model.Note, notes notes.Service, nav Navigator) *Detail {
	return &Detail{
		note:      note,
		notes:     notes,
		nav:       nav,
		editTitle: note.Title,
		editNote:  note.Note,
	}
}

func (d *Detail) Note() model.Note {
	return d.note
}

func (d *Detail) SetTitle(text string) {
	d.editTitle = normalizeInput(text, MaxTitleLength)
}

func (d *Detail) SetNote(text string) {
	d.editNote = normalizeInput(text, MaxNoteLength)
}

func (d *Detail) EditTitle() string {
	return d.editTitle
}

func (d *Detail) EditNote() string {
	return d.editNote
}

// CanSave is false exactly when neither the trimmed title nor the body differ
// from the opened note.
func (d *Detail) CanSave() bool {
	return d.editNote != d.note.Note ||
		strings.TrimSpace(d.editTitle) != strings.TrimSpace(d.note.Title)
}

// Save sends the changed fields and navigates back. A title that trims to
// empty is never sent.
func (d *Detail) Save(ctx context.Context) error {
	if !d.CanSave() {
		return nil
	}

	var update model.NoteUpdate
	if title := strings.TrimSpace(d.editTitle); title != "" && title != strings.TrimSpace(d.note.Title) {
		update.Title = &title
	}
	if d.editNote != d.note.Note {
		body := d.editNote
		update.Note = &body
	}

	if err := d.notes.UpdateNote(ctx, d.note.ID, update); err != nil {
		return err
	}
	d.nav.GoBack()
	return nil
}

// RequestDelete shows the delete confirmation.
func (d *Detail) RequestDelete() {
	d.confirmingDelete = true
}

func (d *Detail) CancelDelete() {
	d.confirmingDelete = false
}

func (d *Detail) ConfirmingDelete() bool {
	return d.confirmingDelete
}

// ConfirmDelete deletes the note, but only while the confirmation is shown.
func (d *Detail) ConfirmDelete(ctx context.Context) error {
	if !d.confirmingDelete || d.note.ID == "" {
		return nil
	}

	if err := d.notes.DeleteNote(ctx, d.note.ID); err != nil {
		return err
	}
	d.confirmingDelete = false
	d.nav.GoBack()
	return nil
}

// ToggleStatus flips completion and navigates back without confirmation.
func (d *Detail) ToggleStatus(ctx context.Context) error {
	if err := d.notes.ToggleStatus(ctx, d.note.ID, !d.note.Completed); err != nil {
		return err
	}
	d.nav.GoBack()
	return nil
}

func (d *Detail) StatusLabel() string {
	if d.note.Completed {
		return "Mark as Incomplete"
	}
	return "Mark as Complete"
}
