package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
)

// countingRepository records how often the cache falls through to the store.
type countingRepository struct {
	*MemoryReportRepository
	lists int
	gets  int
}

func (r *countingRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	r.lists++
	return r.MemoryReportRepository.List(ctx, filter)
}

func (r *countingRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	r.gets++
	return r.MemoryReportRepository.GetByID(ctx, id)
}

func newCachedFixture(t *testing.T) (*miniredis.Miniredis, *countingRepository, repository.ReportRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	start := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	store := &countingRepository{MemoryReportRepository: NewMemoryReportRepository().WithClock(steppingClock(start))}
	return mr, store, NewCachedReportRepository(store, client, time.Hour)
}

func reportIDs(reports []*entity.Report) []string {
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}

func TestCachedGetByIDServedFromCacheAfterCreate(t *testing.T) {
	ctx := context.Background()
	mr, store, repo := newCachedFixture(t)

	report := sampleReport("Blue Backpack", entity.ReportTypeLost, entity.CategoryAccessories)
	require.NoError(t, repo.Create(ctx, report))
	assert.True(t, mr.Exists(reportKeyPrefix+report.ID))

	got, err := repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, "Blue Backpack", got.Name)
	assert.Equal(t, 0, store.gets)
}

func TestCachedGetByIDMissFallsBackAndFills(t *testing.T) {
	ctx := context.Background()
	mr, store, repo := newCachedFixture(t)

	report := sampleReport("Calculator", entity.ReportTypeFound, entity.CategoryElectronics)
	require.NoError(t, store.Create(ctx, report))

	got, err := repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, 1, store.gets)
	assert.True(t, mr.Exists(reportKeyPrefix+report.ID))

	_, err = repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)
}

func TestCachedListRefreshedAfterCreate(t *testing.T) {
	ctx := context.Background()
	_, store, repo := newCachedFixture(t)

	first := sampleReport("Umbrella", entity.ReportTypeLost, entity.CategoryOther)
	require.NoError(t, repo.Create(ctx, first))

	reports, err := repo.List(ctx, repository.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, reportIDs(reports))

	_, err = repo.List(ctx, repository.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists)

	second := sampleReport("Water Bottle", entity.ReportTypeFound, entity.CategoryOther)
	require.NoError(t, repo.Create(ctx, second))

	reports, err = repo.List(ctx, repository.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, reportIDs(reports))
	assert.Equal(t, 2, store.lists)
}

func TestCachedListKeysByFilter(t *testing.T) {
	ctx := context.Background()
	_, store, repo := newCachedFixture(t)

	require.NoError(t, repo.Create(ctx, sampleReport("Keys", entity.ReportTypeLost, entity.CategoryAccessories)))
	require.NoError(t, repo.Create(ctx, sampleReport("Laptop", entity.ReportTypeFound, entity.CategoryElectronics)))

	lost, err := repo.List(ctx, repository.ReportFilter{Type: entity.ReportTypeLost})
	require.NoError(t, err)
	found, err := repo.List(ctx, repository.ReportFilter{Type: entity.ReportTypeFound})
	require.NoError(t, err)

	require.Len(t, lost, 1)
	require.Len(t, found, 1)
	assert.Equal(t, "Keys", lost[0].Name)
	assert.Equal(t, "Laptop", found[0].Name)
	assert.Equal(t, 2, store.lists)
}

func TestCachedUndecodableEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	mr, store, repo := newCachedFixture(t)

	report := sampleReport("Notebook", entity.ReportTypeLost, entity.CategoryBooks)
	require.NoError(t, store.Create(ctx, report))
	require.NoError(t, mr.Set(reportKeyPrefix+report.ID, "{not json"))

	got, err := repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, 1, store.gets)

	cached, err := mr.Get(reportKeyPrefix + report.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "{not json", cached)
}

func TestCachedRedisOutageDegradesToStore(t *testing.T) {
	ctx := context.Background()
	mr, store, repo := newCachedFixture(t)

	report := sampleReport("Jacket", entity.ReportTypeFound, entity.CategoryClothing)
	require.NoError(t, store.Create(ctx, report))
	mr.Close()

	require.NoError(t, repo.Create(ctx, sampleReport("Mug", entity.ReportTypeLost, entity.CategoryOther)))

	reports, err := repo.List(ctx, repository.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	got, err := repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jacket", got.Name)
	assert.Equal(t, 1, store.lists)
	assert.Equal(t, 1, store.gets)
}
