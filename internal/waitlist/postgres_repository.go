package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/orbit-landing/internal/intake"
)

const uniqueViolation = "23505"

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository stores waitlist records in the relational database.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("waitlist: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q rowQuerier) *PostgresRepository {
	if q == nil {
		panic("waitlist: querier required")
	}
	return &PostgresRepository{pool: q}
}

// Insert writes one row. The email unique constraint decides duplicates; there is no pre-check read.
func (r *PostgresRepository) Insert(ctx context.Context, rec *intake.Record) error {
	query := `
		INSERT INTO waitlist (id, full_name, email, company_name, website, company_size, role, pain_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.FullName,
		rec.Email,
		rec.CompanyName,
		rec.Website,
		string(rec.CompanySize),
		rec.Role,
		rec.PainPoints.Strings(),
	).Scan(&createdAt)
	if err != nil {
		if isDuplicateEmail(err) {
			return fmt.Errorf("waitlist: insert: %w", intake.ErrDuplicateEmail)
		}
		return fmt.Errorf("waitlist: insert failed: %w", err)
	}
	rec.CreatedAt = createdAt
	return nil
}

// isDuplicateEmail matches unique violations on the email constraint only;
// a primary-key collision is a different failure.
func isDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return strings.Contains(pgErr.ConstraintName, "email")
}
