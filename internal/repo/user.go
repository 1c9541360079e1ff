package repo

import (
	"context"
	"database/sql"

	"github.com/modernhn/modernhn/internal/models"
)

const userColumns = `id, username, email, password_hash, age, description, profile_image_url, profile_visibility, created_at, updated_at`

// UserRepo persists user records.
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Age,
		&u.Description, &u.ProfileImageURL, &u.ProfileVisibility,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user. passwordHash must already be a bcrypt digest.
// Unique violations on username or email surface as *pq.Error 23505.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, age int, description string, visibility bool) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, age, description, profile_visibility)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		username, email, passwordHash, age, description, visibility,
	)
	return scanUser(row)
}

func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1`,
		email,
	)
	return scanUser(row)
}

// UsernameOrEmailTaken reports whether any user already holds the username or
// the email. One combined query: registration deliberately does not reveal
// which field collided.
func (r *UserRepo) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = $1 OR email = $2 LIMIT 1`,
		username, email,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UsernameTakenByOther reports whether a different user (id != selfID) holds the username.
func (r *UserRepo) UsernameTakenByOther(ctx context.Context, username string, selfID int) (bool, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = $1 AND id <> $2 LIMIT 1`,
		username, selfID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EmailTakenByOther reports whether a different user (id != selfID) holds the email.
func (r *UserRepo) EmailTakenByOther(ctx context.Context, email string, selfID int) (bool, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = $1 AND id <> $2 LIMIT 1`,
		email, selfID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UserUpdate carries the subset of fields a profile update supplies. Nil
// pointers mean "leave unchanged".
type UserUpdate struct {
	Username          *string
	Email             *string
	PasswordHash      *string
	Age               *int
	Description       *string
	ProfileImageURL   *string
	ProfileVisibility *bool
}

// Update applies a partial update and returns the fresh row.
func (r *UserRepo) Update(ctx context.Context, id int, upd UserUpdate) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE users SET
			username = COALESCE($1, username),
			email = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			age = COALESCE($4, age),
			description = COALESCE($5, description),
			profile_image_url = COALESCE($6, profile_image_url),
			profile_visibility = COALESCE($7, profile_visibility),
			updated_at = NOW()
		WHERE id = $8
		RETURNING `+userColumns,
		upd.Username, upd.Email, upd.PasswordHash, upd.Age,
		upd.Description, upd.ProfileImageURL, upd.ProfileVisibility, id,
	)
	return scanUser(row)
}

// ListPublic returns the public projection of every user with a visible profile.
func (r *UserRepo) ListPublic(ctx context.Context) ([]models.PublicUser, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, username, age, description, profile_image_url
		FROM users
		WHERE profile_visibility = TRUE
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.PublicUser{}
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Age, &u.Description, &u.ProfileImageURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetPublicByID returns the public projection of one user, but only when their
// profile is visible. sql.ErrNoRows covers both "missing" and "private" so the
// two are indistinguishable to callers.
func (r *UserRepo) GetPublicByID(ctx context.Context, id int) (*models.PublicUser, error) {
	u := &models.PublicUser{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, age, description, profile_image_url
		FROM users
		WHERE id = $1 AND profile_visibility = TRUE`,
		id,
	).Scan(&u.ID, &u.Username, &u.Age, &u.Description, &u.ProfileImageURL)
	if err != nil {
		return nil, err
	}
	return u, nil
}
