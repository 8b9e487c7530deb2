package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/orbit-landing/internal/intake"
)

func sampleRecord(t *testing.T, id, email string, createdAt time.Time) *intake.Record {
	t.Helper()
	set, err := intake.NewPainPointSet(intake.PainInventoryFragmentation)
	require.NoError(t, err)
	return intake.NewRecord(id, intake.Draft{
		FullName:    "Jane Doe",
		Email:       email,
		CompanyName: "Acme",
		Website:     "acme.com",
		CompanySize: intake.CompanySize11To50,
		Role:        "Founder",
		PainPoints:  set,
	}, createdAt)
}

func TestInMemoryRepositoryRejectsDuplicateEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Insert(ctx, sampleRecord(t, "id-1", "jane@acme.com", now)))
	err := repo.Insert(ctx, sampleRecord(t, "id-2", "jane@acme.com", now))
	assert.ErrorIs(t, err, intake.ErrDuplicateEmail)

	stored, err := repo.GetByEmail(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", stored.ID)
	assert.Equal(t, 1, repo.Count())

	_, err = repo.GetByEmail(ctx, "nobody@acme.com")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestInMemoryRepositoryHonoursContext(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := repo.Insert(ctx, sampleRecord(t, "id-1", "jane@acme.com", time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, repo.Count())
}

func TestInMemoryRepositoryList(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, repo.Insert(ctx, sampleRecord(t, email, email, base.Add(time.Duration(i)*time.Hour))))
	}

	page, err := repo.List(ctx, ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c@x.com", page[0].Email)
	assert.Equal(t, "b@x.com", page[1].Email)

	page, err = repo.List(ctx, ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a@x.com", page[0].Email)

	page, err = repo.List(ctx, ListFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page)
}

// The wizard and the in-memory store together: the happy path, then the same draft again.
func TestWizardAgainstInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	draft := sampleRecord(t, "", "jane@acme.com", time.Time{}).Draft()

	submit := func() intake.View {
		w := intake.NewWizard(repo)
		_, err := w.Update(intake.FieldPatch{FullName: &draft.FullName, Email: &draft.Email})
		require.NoError(t, err)
		w.Next(ctx)
		_, err = w.Update(intake.FieldPatch{
			CompanyName: &draft.CompanyName,
			Website:     &draft.Website,
			CompanySize: &draft.CompanySize,
			Role:        &draft.Role,
		})
		require.NoError(t, err)
		w.Next(ctx)
		_, err = w.TogglePainPoint(ctx, intake.PainInventoryFragmentation)
		require.NoError(t, err)
		view, err := w.Submit(ctx)
		require.NoError(t, err)
		return view
	}

	first := submit()
	require.Equal(t, intake.KindSuccess, first.Kind)
	stored, err := repo.GetByEmail(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, stored.Draft().Equal(draft))

	second := submit()
	assert.Equal(t, intake.Failed(intake.FailureDuplicateEmail), second.State)
	assert.Equal(t, 1, repo.Count())
	again, err := repo.GetByEmail(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, again.ID)
}
