package model

import "time"

type (
	UserID string
	NoteID string

	Note struct {
		ID        NoteID
		UserID    UserID
		Title     string
		Note      string
		Completed bool
		Category  string
		CreatedAt time.Time
	}

	// NoteUpdate carries the fields of a partial note update. A nil field is
	// left untouched in the store.
	NoteUpdate struct {
		Title *string
		Note  *string
	}
)

// IsEmpty reports whether the update touches no field.
func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Note == nil
}
