package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/modernhn/modernhn/internal/models"
)

// ErrDuplicate is returned by Create when the (user, story) pair already has a
// favorite. The unique index is the authoritative guard; handler pre-checks
// only make the common-case error friendlier.
var ErrDuplicate = errors.New("favorite already exists")

const favoriteColumns = `id, user_id, story_id, title, url, "by", score, time, created_at`

// FavoriteRepo persists per-user story bookmarks.
type FavoriteRepo struct {
	DB *sql.DB
}

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo {
	return &FavoriteRepo{DB: db}
}

func scanFavorite(row *sql.Row) (*models.Favorite, error) {
	f := &models.Favorite{}
	err := row.Scan(&f.ID, &f.UserID, &f.StoryID, &f.Title, &f.URL, &f.By, &f.Score, &f.Time, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListByUser returns all favorites owned by userID, newest first.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID int) ([]models.Favorite, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+favoriteColumns+`
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.StoryID, &f.Title, &f.URL, &f.By, &f.Score, &f.Time, &f.CreatedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// Exists reports whether userID already has a favorite for storyID.
func (r *FavoriteRepo) Exists(ctx context.Context, userID, storyID int) (bool, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM favorites WHERE user_id = $1 AND story_id = $2`,
		userID, storyID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a favorite and returns the new row. A concurrent duplicate
// insert loses the race at the unique index and comes back as ErrDuplicate.
func (r *FavoriteRepo) Create(ctx context.Context, userID, storyID int, title string, url *string, by string, score int, time int64) (*models.Favorite, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO favorites (user_id, story_id, title, url, "by", score, time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+favoriteColumns,
		userID, storyID, title, url, by, score, time,
	)
	fav, err := scanFavorite(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return fav, nil
}

// Delete removes the favorite for (userID, storyID) and reports whether a row
// was deleted. Scoping by userID is what keeps one user from removing
// another's favorite.
func (r *FavoriteRepo) Delete(ctx context.Context, userID, storyID int) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND story_id = $2`,
		userID, storyID,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
