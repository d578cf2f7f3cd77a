package album

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Field limits, matching the column constraints in the migrations.
const (
	maxTitleLength    = 200
	maxArtistLength   = 100
	maxGenreLength    = 50
	maxLabelLength    = 100
	maxImageURLLength = 500
	minReleaseYear    = 1000
	maxReleaseYear    = 9999
	maxPrice          = 1e8 // NUMERIC(10,2)
	maxStock          = math.MaxInt32
)

// Normalize trims string fields, turns blank optional strings into nil and
// rounds the price to cents.
func (in *Input) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Artist = strings.TrimSpace(in.Artist)
	in.Genre = trimOptional(in.Genre)
	in.RecordLabel = trimOptional(in.RecordLabel)
	in.ImageURL = trimOptional(in.ImageURL)
	if in.Price != nil {
		p := math.Round(*in.Price*100) / 100 //nolint:mnd // cents
		in.Price = &p
	}
}

// Validate checks a normalized Input.
func (in *Input) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidAlbum)
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidAlbum, maxTitleLength)
	}
	if in.Artist == "" {
		return fmt.Errorf("%w: artist is required", ErrInvalidAlbum)
	}
	if utf8.RuneCountInString(in.Artist) > maxArtistLength {
		return fmt.Errorf("%w: artist exceeds %d characters", ErrInvalidAlbum, maxArtistLength)
	}
	if err := checkLength("genre", in.Genre, maxGenreLength); err != nil {
		return err
	}
	if err := checkLength("recordLabel", in.RecordLabel, maxLabelLength); err != nil {
		return err
	}
	if err := checkLength("imageUrl", in.ImageURL, maxImageURLLength); err != nil {
		return err
	}
	if y := in.ReleaseYear; y != nil && (*y < minReleaseYear || *y > maxReleaseYear) {
		return fmt.Errorf("%w: releaseYear must be between %d and %d", ErrInvalidAlbum, minReleaseYear, maxReleaseYear)
	}
	if p := in.Price; p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0) {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidAlbum)
	}
	if p := in.Price; p != nil && *p >= maxPrice {
		return fmt.Errorf("%w: price must be below %.0f", ErrInvalidAlbum, maxPrice)
	}
	if s := in.Stock; s != nil && *s < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidAlbum)
	}
	if s := in.Stock; s != nil && *s > maxStock {
		return fmt.Errorf("%w: stock exceeds %d", ErrInvalidAlbum, maxStock)
	}
	return nil
}

func checkLength(field string, v *string, limit int) error {
	if v != nil && utf8.RuneCountInString(*v) > limit {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidAlbum, field, limit)
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
