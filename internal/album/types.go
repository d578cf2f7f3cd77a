package album

import "time"

// Album is a catalog entry. Optional fields are nil when unset.
type Album struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Genre       *string   `json:"genre"`
	ReleaseYear *int      `json:"releaseYear"`
	RecordLabel *string   `json:"recordLabel"`
	Price       *float64  `json:"price"`
	Stock       *int      `json:"stock"`
	ImageURL    *string   `json:"imageUrl"`
	UserID      *int64    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input carries the writable fields of an album. It has no owner field, so
// an owner supplied in a request body is ignored.
type Input struct {
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Genre       *string  `json:"genre"`
	ReleaseYear *int     `json:"releaseYear"`
	RecordLabel *string  `json:"recordLabel"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	ImageURL    *string  `json:"imageUrl"`
}

// apply copies the writable fields of in onto a. ID, owner and timestamps
// are left alone.
func (a *Album) apply(in Input) {
	a.Title = in.Title
	a.Artist = in.Artist
	a.Genre = in.Genre
	a.ReleaseYear = in.ReleaseYear
	a.RecordLabel = in.RecordLabel
	a.Price = in.Price
	a.Stock = in.Stock
	a.ImageURL = in.ImageURL
}
