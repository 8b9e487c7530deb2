package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/orbit-landing/internal/intake"
)

var listColumns = []string{"id", "full_name", "email", "company_name", "website", "company_size", "role", "pain_points", "created_at"}

func TestSQLListerList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM waitlist").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(listColumns).
			AddRow("id-1", "Jane Doe", "jane@acme.com", "Acme", "acme.com", "11-50", "Founder",
				`{"Channel Sync Delays","Inventory Fragmentation"}`, created).
			AddRow("id-2", "Sam Roe", "sam@roe.io", "", "", "", "", "{}", created.Add(-time.Hour)))

	records, err := NewSQLLister(db).List(context.Background(), ListFilter{Limit: 50})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, intake.CompanySize11To50, first.CompanySize)
	assert.Equal(t, []string{"Inventory Fragmentation", "Channel Sync Delays"}, first.PainPoints.Strings())
	assert.True(t, first.CreatedAt.Equal(created))

	assert.Equal(t, intake.CompanySizeUnset, records[1].CompanySize)
	assert.Equal(t, 0, records[1].PainPoints.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLListerRejectsUnknownPainPoint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM waitlist").
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows(listColumns).
			AddRow("id-1", "Jane Doe", "jane@acme.com", "", "", "", "", `{"Bad Vibes"}`, time.Now()))

	_, err = NewSQLLister(db).List(context.Background(), ListFilter{Limit: 10, Offset: 20})
	assert.ErrorIs(t, err, intake.ErrUnknownPainPoint)
}

func TestSQLListerQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM waitlist").WillReturnError(errors.New("boom"))

	_, err = NewSQLLister(db).List(context.Background(), ListFilter{Limit: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
