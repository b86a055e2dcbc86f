package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = `id, store_id, username, password_hash, display_name, role, is_active, created_at`

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(
		&u.ID, &u.StoreID, &u.Username, &u.PasswordHash,
		&u.DisplayName, &u.Role, &u.IsActive, &u.CreatedAt,
	)
}

func (s *userService) CreateUser(ctx context.Context, input UserInput) (*User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if input.Role == "" {
		input.Role = "staff"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{}
	err = scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (store_id, username, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		input.StoreID, input.Username, string(hash), input.DisplayName, input.Role,
	), u)
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", input.Username, err)
	}
	return u, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	), u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q not found", username)
		}
		return nil, fmt.Errorf("fetch user %q: %w", username, err)
	}
	return u, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID int) (*User, error) {
	u := &User{}
	err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	), u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d not found", userID)
		}
		return nil, fmt.Errorf("fetch user %d: %w", userID, err)
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u := &User{}
	err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1 AND is_active = true`,
		username,
	), u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("fetch user %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
