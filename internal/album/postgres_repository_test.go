package album

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPgRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var pgAlbumCols = []string{"id", "title", "artist", "genre", "release_year", "record_label",
	"price", "stock", "image_url", "user_id", "created_at", "updated_at"}

func TestPgAlbumCreate(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	q := `(?s)^INSERT\s+INTO\s+albums\s*\(title,\s*artist,\s*genre,\s*release_year,\s*record_label,\s*price,\s*stock,\s*image_url,\s*user_id\)\s*VALUES\s*\(\$1,.*\$9\)\s*RETURNING\s+id,\s*created_at,\s*updated_at$`
	mock.ExpectQuery(q).
		WithArgs("Blue Train", "John Coltrane", "Jazz", nil, nil, 24.5, nil, nil, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	owner := int64(3)
	a := &Album{Title: "Blue Train", Artist: "John Coltrane", Genre: ptr("Jazz"), Price: ptr(24.5), UserID: &owner}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.ID != 11 || !a.CreatedAt.Equal(now) {
		t.Fatalf("unexpected album: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPgAlbumGet_Found(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM\s+albums\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(pgAlbumCols).
			AddRow(int64(11), "Blue Train", "John Coltrane", "Jazz", int64(1957), nil, 24.5, int64(2), nil, nil, now, now))

	a, err := repo.Get(context.Background(), 11)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if *a.ReleaseYear != 1957 || *a.Price != 24.5 || *a.Stock != 2 {
		t.Errorf("unexpected album: %+v", a)
	}
	if a.UserID != nil || a.RecordLabel != nil {
		t.Error("NULL columns should scan to nil")
	}
}

func TestPgAlbumGet_NotFound(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+albums\s+WHERE\s+id`).WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), 1); !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestPgAlbumUpdate_DoesNotTouchOwner(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	now := time.Now().UTC()

	q := `(?s)^UPDATE\s+albums\s+SET\s+title\s*=\s*\$1,\s*artist\s*=\s*\$2,\s*genre\s*=\s*\$3,\s*release_year\s*=\s*\$4,\s*record_label\s*=\s*\$5,\s*price\s*=\s*\$6,\s*stock\s*=\s*\$7,\s*image_url\s*=\s*\$8,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$9\s+RETURNING\s+updated_at$`
	mock.ExpectQuery(q).
		WithArgs("New", "Artist", nil, nil, nil, nil, nil, nil, int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	other := int64(99)
	a := &Album{ID: 4, Title: "New", Artist: "Artist", UserID: &other}
	if err := repo.Update(context.Background(), a); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPgAlbumUpdate_NotFound(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)

	mock.ExpectQuery(`UPDATE\s+albums`).WillReturnError(sql.ErrNoRows)

	if err := repo.Update(context.Background(), &Album{ID: 4, Title: "x", Artist: "y"}); !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestPgAlbumDelete(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)

	mock.ExpectExec(`DELETE\s+FROM\s+albums\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+albums`).
		WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 4); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), 5); !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestPgAlbumList_QueryError(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+albums\s+ORDER\s+BY`).WillReturnError(errors.New("db down"))

	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPgAlbumExistsAndCount(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+albums`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	if ok, err := repo.Exists(context.Background(), 7); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if n, err := repo.Count(context.Background()); err != nil || n != 12 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}
