package album

import "errors"

var (
	// ErrAlbumNotFound is returned when an album ID does not exist.
	ErrAlbumNotFound = errors.New("album not found")

	// ErrInvalidAlbum is returned when album fields fail validation.
	ErrInvalidAlbum = errors.New("invalid album")
)
