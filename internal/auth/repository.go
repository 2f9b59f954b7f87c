package auth

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/incontext-app/incontext/pkg/logging"
	"github.com/incontext-app/incontext/pkg/repository"
)

// System defines storage operations for users and login sessions.
type System interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	CreateSession(ctx context.Context, token string, userID uuid.UUID, expires time.Time) error
	SessionUser(ctx context.Context, token string) (*User, error)
	DeleteSession(ctx context.Context, token string) error
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an auth repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logging.WithSystem(logger, "auth"),
	}
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Created)
	return u, err
}

func (r *repo) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	q := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created`

	u, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (User, error) {
		return repository.QueryOne(ctx, tx, q, []any{username, passwordHash}, scanUser)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrUserNotFound, ErrUsernameTaken)
	}

	r.logger.Info("user registered", "id", u.ID, "username", u.Username)
	return &u, nil
}

func (r *repo) UserByUsername(ctx context.Context, username string) (*User, error) {
	q := `
		SELECT id, username, password_hash, created
		FROM users
		WHERE username = $1`

	u, err := repository.QueryOne(ctx, r.db, q, []any{username}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrUserNotFound, nil)
	}
	return &u, nil
}

func (r *repo) CreateSession(ctx context.Context, token string, userID uuid.UUID, expires time.Time) error {
	q := `
		INSERT INTO sessions (token, user_id, expires)
		VALUES ($1, $2, $3)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, q, token, userID, expires)
		return struct{}{}, err
	})
	return err
}

func (r *repo) SessionUser(ctx context.Context, token string) (*User, error) {
	q := `
		SELECT u.id, u.username, u.password_hash, u.created
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = $1 AND s.expires > now()`

	u, err := repository.QueryOne(ctx, r.db, q, []any{token}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrSessionNotFound, nil)
	}
	return &u, nil
}

func (r *repo) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token)
	return err
}
