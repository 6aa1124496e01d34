package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/jackc/pgx/v5"
)

type UserStore struct {
	db db.DBTX
}

func NewUserStore(db db.DBTX) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, phone, preferred_signin_method, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (email, phone, preferred_signin_method)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at;
    `

	err := s.db.QueryRow(ctx, query, u.Email, u.Phone, u.PreferredSigninMethod).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch c, _ := constraintViolation(err, pgUniqueViolation); c {
		case "users_email_key":
			return ErrAlreadyExists
		case "users_phone_key":
			return ErrPhoneTaken
		}
		return fmt.Errorf("could not create user: %w", err)
	}

	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *UserStore) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := s.db.Query(ctx, `
        SELECT `+userColumns+`
        FROM users
        ORDER BY id
        LIMIT $1 OFFSET $2
    `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Phone,
		&u.PreferredSigninMethod,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return u, nil
}
