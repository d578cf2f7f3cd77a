package album

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists albums. Lookups report absence with ErrAlbumNotFound.
type Repository interface {
	List(ctx context.Context) ([]Album, error)
	Get(ctx context.Context, id int64) (*Album, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, a *Album) error
	// Update writes the descriptive fields of a. The owner column is never written.
	Update(ctx context.Context, a *Album) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

const albumColumns = `id, title, artist, genre, release_year, record_label,
	price, stock, image_url, user_id, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed album repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List returns all albums ordered by ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Album, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+albumColumns+" FROM albums ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	defer rows.Close()

	albums := []Album{}
	for rows.Next() {
		a, err := scanSQLiteAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating albums: %w", err)
	}
	return albums, nil
}

// Get retrieves an album by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Album, error) {
	return scanSQLiteAlbum(r.db.QueryRowContext(ctx, "SELECT "+albumColumns+" FROM albums WHERE id = ?", id))
}

// Exists reports whether an album with id exists.
func (r *SQLiteRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM albums WHERE id = ?)", id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking album %d: %w", id, err)
	}
	return exists == 1, nil
}

// Create inserts a and sets its ID and timestamps.
func (r *SQLiteRepository) Create(ctx context.Context, a *Album) error {
	now := time.Now().UTC().Truncate(time.Second)
	stamp := now.Format(time.RFC3339)

	const query = `INSERT INTO albums (title, artist, genre, release_year, record_label,
		price, stock, image_url, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		a.Title, a.Artist, a.Genre, a.ReleaseYear, a.RecordLabel,
		a.Price, a.Stock, a.ImageURL, a.UserID, stamp, stamp)
	if err != nil {
		return fmt.Errorf("inserting album: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading album id: %w", err)
	}
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// Update writes the descriptive fields of a.
func (r *SQLiteRepository) Update(ctx context.Context, a *Album) error {
	now := time.Now().UTC().Truncate(time.Second)

	const query = `UPDATE albums SET title = ?, artist = ?, genre = ?, release_year = ?,
		record_label = ?, price = ?, stock = ?, image_url = ?, updated_at = ?
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		a.Title, a.Artist, a.Genre, a.ReleaseYear, a.RecordLabel,
		a.Price, a.Stock, a.ImageURL, now.Format(time.RFC3339), a.ID)
	if err != nil {
		return fmt.Errorf("updating album %d: %w", a.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 { //nolint:errcheck // always succeeds on SQLite
		return ErrAlbumNotFound
	}
	a.UpdatedAt = now
	return nil
}

// Delete removes an album.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM albums WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting album %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 { //nolint:errcheck // always succeeds on SQLite
		return ErrAlbumNotFound
	}
	return nil
}

// Count returns the number of albums.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM albums").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting albums: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// nullableAlbum holds the nullable columns shared by both stores.
type nullableAlbum struct {
	genre, label, image sql.NullString
	year, stock, owner  sql.NullInt64
	price               sql.NullFloat64
}

func (n *nullableAlbum) applyTo(a *Album) {
	a.Genre = nullString(n.genre)
	a.RecordLabel = nullString(n.label)
	a.ImageURL = nullString(n.image)
	a.ReleaseYear = nullInt(n.year)
	a.Stock = nullInt(n.stock)
	if n.price.Valid {
		p := n.price.Float64
		a.Price = &p
	}
	if n.owner.Valid {
		o := n.owner.Int64
		a.UserID = &o
	}
}

func scanSQLiteAlbum(s scanner) (*Album, error) {
	var a Album
	var n nullableAlbum
	var createdAt, updatedAt string

	err := s.Scan(&a.ID, &a.Title, &a.Artist, &n.genre, &n.year, &n.label,
		&n.price, &n.stock, &n.image, &n.owner, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("scanning album: %w", err)
	}

	n.applyTo(&a)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &a, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}
