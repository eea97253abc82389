package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository over PostgreSQL. Schema lives in the
// top-level migrations directory.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository wraps an established connection pool.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = "id, username, email, email_confirmed, password_hash, created_at"

// FindUserByID implements Repository.
func (r *PGRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// FindUserByLogin implements Repository.
func (r *PGRepository) FindUserByLogin(ctx context.Context, login string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(username) = lower($1) OR lower(email) = lower($1)",
		login)
	return scanUser(row)
}

// InsertUser implements Repository. Unique-constraint violations are mapped
// onto the package's conflict errors by constraint name.
func (r *PGRepository) InsertUser(ctx context.Context, user *User) error {
	hash, _ := user.PasswordHash()
	var email *string
	if user.Email != "" {
		email = &user.Email
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, email_confirmed, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, email, user.EmailConfirmed, hash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

// RolePermissions implements Repository, streaming the user's role masks.
func (r *PGRepository) RolePermissions(ctx context.Context, userID uuid.UUID) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.permissions
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var masks []Permission
	for rows.Next() {
		var mask int64
		if err := rows.Scan(&mask); err != nil {
			return nil, err
		}
		masks = append(masks, Permission(mask))
	}
	return masks, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		id             uuid.UUID
		username       string
		email          *string
		emailConfirmed bool
		passwordHash   []byte
		createdAt      time.Time
	)

	err := row.Scan(&id, &username, &email, &emailConfirmed, &passwordHash, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var emailValue string
	if email != nil {
		emailValue = *email
	}
	return RestoreUser(id, username, emailValue, emailConfirmed, createdAt, passwordHash), nil
}
