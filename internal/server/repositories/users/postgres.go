package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation    = "23505"
	pgInvalidTextPresent = "22P02"
)

const selectIdentity = `SELECT id, username, email, full_name, password_hash, avatar, cover_image, refresh_token, created_at, updated_at
		 FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	query :=
		`INSERT INTO users (username, email, full_name, password_hash, avatar, cover_image)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`

	created := *identity
	created.RefreshToken = ""

	err := r.db.QueryRowContext(ctx, query,
		identity.Username, identity.Email, identity.FullName, identity.PasswordHash, identity.Avatar, identity.Cover,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}

	return &created, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	row := r.db.QueryRowContext(ctx, selectIdentity+`
		 WHERE id = $1`, id)
	return scanIdentity(row)
}

func (r *PostgresRepository) FindByLogin(ctx context.Context, login string) (*models.Identity, error) {
	row := r.db.QueryRowContext(ctx, selectIdentity+`
		 WHERE username = $1 OR email = $1
		 LIMIT 1`, login)
	return scanIdentity(row)
}

func (r *PostgresRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdateFields(ctx context.Context, id string, patch models.IdentityPatch) error {
	if patch.Empty() {
		return nil
	}

	query, args := buildUpdate(id, patch)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SwapRefreshToken(ctx context.Context, id, expected, next string) error {
	query :=
		`UPDATE users SET refresh_token = $3, updated_at = now()
		 WHERE id = $1 AND refresh_token = $2`

	res, err := r.db.ExecContext(ctx, query, id, expected, next)
	if err != nil {
		return mapPgError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrStaleSession
	}
	return nil
}

// buildUpdate renders the UPDATE for the fields set in patch. Column order
// is fixed so the statement text is stable for a given patch shape.
func buildUpdate(id string, patch models.IdentityPatch) (string, []any) {
	var sets []string
	var args []any

	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Avatar != nil {
		add("avatar", *patch.Avatar)
	}
	if patch.Cover != nil {
		add("cover_image", *patch.Cover)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	switch {
	case patch.ClearRefreshToken:
		sets = append(sets, "refresh_token = NULL")
	case patch.RefreshToken != nil:
		add("refresh_token", *patch.RefreshToken)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))

	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*models.Identity, error) {
	identity := &models.Identity{}
	var refresh sql.NullString

	err := row.Scan(&identity.ID, &identity.Username, &identity.Email, &identity.FullName,
		&identity.PasswordHash, &identity.Avatar, &identity.Cover, &refresh,
		&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, mapPgError(err)
	}

	identity.RefreshToken = refresh.String
	return identity, nil
}

// mapPgError turns business-relevant PostgreSQL errors into common kinds.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrConflict, pgErr.ConstraintName)
		case pgInvalidTextPresent:
			// a malformed uuid cannot name an existing row
			return common.ErrNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}
