package model

import "errors"

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrNoUser       = errors.New("no user is currently signed in")
)
