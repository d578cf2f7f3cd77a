package album

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a PostgreSQL-backed album repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Album, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	defer rows.Close()

	albums := []Album{}
	for rows.Next() {
		a, err := scanPgAlbum(rows)
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

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Album, error) {
	return scanPgAlbum(r.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = $1`, id))
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM albums WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking album %d: %w", id, err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *Album) error {
	query := `INSERT INTO albums (title, artist, genre, release_year, record_label, price, stock, image_url, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Artist, a.Genre, a.ReleaseYear, a.RecordLabel, a.Price, a.Stock, a.ImageURL, a.UserID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting album: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *Album) error {
	query := `UPDATE albums SET title = $1, artist = $2, genre = $3, release_year = $4,
		 record_label = $5, price = $6, stock = $7, image_url = $8, updated_at = now()
		 WHERE id = $9
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Artist, a.Genre, a.ReleaseYear, a.RecordLabel, a.Price, a.Stock, a.ImageURL, a.ID,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAlbumNotFound
	}
	if err != nil {
		return fmt.Errorf("updating album %d: %w", a.ID, err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting album %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting album %d: %w", id, err)
	}
	if n == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting albums: %w", err)
	}
	return n, nil
}

func scanPgAlbum(s scanner) (*Album, error) {
	var a Album
	var n nullableAlbum

	err := s.Scan(&a.ID, &a.Title, &a.Artist, &n.genre, &n.year, &n.label,
		&n.price, &n.stock, &n.image, &n.owner, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("scanning album: %w", err)
	}
	n.applyTo(&a)
	return &a, nil
}
