// Package sqlstore implements storage.Store on PostgreSQL or SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// Store is a database/sql backed storage.Store
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ storage.Store = (*Store)(nil)

// New opens the configured database and migrates it when AutoMigrate is set
func New(config storage.Config) (*Store, error) {
	db, dialect, err := Open(config)
	if err != nil {
		return nil, err
	}

	if config.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()
		if err := Migrate(ctx, db, dialect); err != nil {
			db.Close()
			return nil, err
		}
	}

	return NewWithDB(db, dialect), nil
}

// NewWithDB wraps an existing connection pool
func NewWithDB(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB returns the underlying pool
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

// HealthCheck pings the database
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unhealthy: %w", err)
	}
	return nil
}

// Close closes the pool
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, email, password_hash, provider, is_admin, federated_id, name, avatar_url, created_at, updated_at`

func scanUser(row rowScanner) (*auth.User, error) {
	var (
		u           auth.User
		provider    string
		federatedID sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &provider, &u.IsAdmin,
		&federatedID, &u.Name, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Provider = auth.Provider(provider)
	u.FederatedID = federatedID.String
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) getUser(ctx context.Context, where string, arg interface{}) (*auth.User, error) {
	query := s.q(`SELECT ` + userColumns + ` FROM users WHERE ` + where)
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID returns the user with the given id
func (s *Store) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	return s.getUser(ctx, `id = $1`, id)
}

// GetUserByEmail returns the user with the given email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getUser(ctx, `email = $1`, auth.NormalizeEmail(email))
}

// CreateUser inserts a user. A taken email yields auth.ErrDuplicateAccount.
func (s *Store) CreateUser(ctx context.Context, user *auth.User) error {
	user.Email = auth.NormalizeEmail(user.Email)

	query := s.q(`
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, string(user.Provider), user.IsAdmin,
		nullString(user.FederatedID), user.Name, user.AvatarURL, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser overwrites the mutable user fields
func (s *Store) UpdateUser(ctx context.Context, user *auth.User) error {
	user.Email = auth.NormalizeEmail(user.Email)

	query := s.q(`
		UPDATE users
		SET email = $2, password_hash = $3, provider = $4, is_admin = $5,
		    federated_id = $6, name = $7, avatar_url = $8, updated_at = $9
		WHERE id = $1
	`)
	result, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, string(user.Provider), user.IsAdmin,
		nullString(user.FederatedID), user.Name, user.AvatarURL, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrDuplicateAccount
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(result, auth.ErrUserNotFound)
}

// ListAdmins returns every admin ordered by email
func (s *Store) ListAdmins(ctx context.Context) ([]*auth.User, error) {
	query := s.q(`SELECT ` + userColumns + ` FROM users WHERE is_admin = $1 ORDER BY email ASC`)
	rows, err := s.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	admins := make([]*auth.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		admins = append(admins, u)
	}
	return admins, rows.Err()
}

// DeleteUser removes a user and their bookings
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM bookings WHERE user_id = $1`), id); err != nil {
			return fmt.Errorf("failed to delete user bookings: %w", err)
		}
		result, err := tx.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = $1`), id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return requireAffected(result, auth.ErrUserNotFound)
	})
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
