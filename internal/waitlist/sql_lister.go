package waitlist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/wolfman30/orbit-landing/internal/intake"
)

var _ Lister = (*SQLLister)(nil)

// SQLLister reads waitlist rows through database/sql for the admin views.
type SQLLister struct {
	db *sql.DB
}

func NewSQLLister(db *sql.DB) *SQLLister {
	if db == nil {
		panic("waitlist: sql db required")
	}
	return &SQLLister{db: db}
}

// List returns records newest first.
func (l *SQLLister) List(ctx context.Context, filter ListFilter) ([]*intake.Record, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, full_name, email, company_name, website, company_size, role, pain_points, created_at
		FROM waitlist
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("waitlist: list: %w", err)
	}
	defer rows.Close()

	out := []*intake.Record{}
	for rows.Next() {
		var (
			rec    intake.Record
			size   string
			labels []string
		)
		if err := rows.Scan(&rec.ID, &rec.FullName, &rec.Email, &rec.CompanyName, &rec.Website,
			&size, &rec.Role, pq.Array(&labels), &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("waitlist: scan: %w", err)
		}
		rec.CompanySize = intake.CompanySize(size)
		points := make([]intake.PainPoint, len(labels))
		for i, label := range labels {
			points[i] = intake.PainPoint(label)
		}
		set, err := intake.NewPainPointSet(points...)
		if err != nil {
			return nil, fmt.Errorf("waitlist: row %s: %w", rec.ID, err)
		}
		rec.PainPoints = set
		out = append(out, &rec)
	}
	return out, rows.Err()
}
