package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func favoriteRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "story_id", "title", "url", "by", "score", "time", "created_at",
	})
}

func TestFavoriteRepo_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, story_id`).
		WithArgs(1).
		WillReturnRows(favoriteRows().
			AddRow(2, 1, 200, "Newer story", nil, "bob", 50, int64(1700000100), time.Now()).
			AddRow(1, 1, 100, "Older story", "https://example.com", "alice", 120, int64(1700000000), time.Now()))

	repo := NewFavoriteRepo(db)
	favorites, err := repo.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(favorites) != 2 || favorites[0].StoryID != 200 || favorites[1].StoryID != 100 {
		t.Errorf("unexpected favorites: %+v", favorites)
	}
	if favorites[0].URL != nil {
		t.Errorf("expected nil url, got: %v", *favorites[0].URL)
	}
	if favorites[1].URL == nil || *favorites[1].URL != "https://example.com" {
		t.Errorf("unexpected url: %+v", favorites[1].URL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteRepo_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM favorites WHERE user_id = \$1 AND story_id = \$2`).
		WithArgs(1, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	repo := NewFavoriteRepo(db)
	exists, err := repo.Exists(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("expected exists=true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteRepo_Exists_False(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM favorites WHERE user_id = \$1 AND story_id = \$2`).
		WithArgs(1, 999).
		WillReturnError(sql.ErrNoRows)

	repo := NewFavoriteRepo(db)
	exists, err := repo.Exists(context.Background(), 1, 999)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("expected exists=false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	url := "https://example.com"
	mock.ExpectQuery(`INSERT INTO favorites \(user_id, story_id, title, url, "by", score, time\)`).
		WithArgs(1, 100, "A story", "https://example.com", "alice", 120, int64(1700000000)).
		WillReturnRows(favoriteRows().
			AddRow(1, 1, 100, "A story", "https://example.com", "alice", 120, int64(1700000000), time.Now()))

	repo := NewFavoriteRepo(db)
	fav, err := repo.Create(context.Background(), 1, 100, "A story", &url, "alice", 120, 1700000000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if fav.ID != 1 || fav.StoryID != 100 || fav.By != "alice" {
		t.Errorf("unexpected favorite: %+v", fav)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteRepo_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO favorites`).
		WithArgs(1, 100, "A story", nil, "alice", 120, int64(1700000000)).
		WillReturnError(&pq.Error{Code: "23505"})

	repo := NewFavoriteRepo(db)
	if _, err := repo.Create(context.Background(), 1, 100, "A story", nil, "alice", 120, 1700000000); err != ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM favorites WHERE user_id = \$1 AND story_id = \$2`).
		WithArgs(1, 100).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewFavoriteRepo(db)
	deleted, err := repo.Delete(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteRepo_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM favorites WHERE user_id = \$1 AND story_id = \$2`).
		WithArgs(1, 999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewFavoriteRepo(db)
	deleted, err := repo.Delete(context.Background(), 1, 999)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted {
		t.Error("expected deleted=false for missing favorite")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
