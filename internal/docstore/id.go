package docstore

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 20
)

// NewID generates a document id in the shape of a managed store's auto id:
// 20 alphanumeric characters.
func NewID() (string, error) {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate document id: %w", err)
	}
	return id, nil
}
