package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
	"campusfinder/pkg/logger"
)

const (
	reportKeyPrefix   = "campusfinder:report:"
	listKeyPrefix     = "campusfinder:reports:list:"
	listGenerationKey = "campusfinder:reports:list-generation"
)

type cachedReport struct {
	ID     string       `json:"id"`
	Record reportRecord `json:"record"`
}

// cachedReportRepository puts a Redis read-through cache in front of another
// repository. Reports never change after creation, so point lookups are
// cached for the full TTL; list results are keyed by a generation counter
// that every Create bumps. Cache failures degrade to the wrapped store.
type cachedReportRepository struct {
	next   repository.ReportRepository
	client *redis.Client
	ttl    time.Duration
}

func NewCachedReportRepository(next repository.ReportRepository, client *redis.Client, ttl time.Duration) repository.ReportRepository {
	return &cachedReportRepository{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func (r *cachedReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if err := r.next.Create(ctx, report); err != nil {
		return err
	}

	if err := r.client.Incr(ctx, listGenerationKey).Err(); err != nil {
		logger.Warn("Report cache: failed to bump list generation after creating %s: %v", report.ID, err)
	}
	r.store(ctx, reportKeyPrefix+report.ID, []*entity.Report{report})
	return nil
}

func (r *cachedReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	generation, err := r.client.Get(ctx, listGenerationKey).Int64()
	if err != nil && err != redis.Nil {
		logger.Warn("Report cache: failed to read list generation: %v", err)
		return r.next.List(ctx, filter)
	}

	key := listKey(generation, filter)
	if reports, ok := r.load(ctx, key); ok {
		return reports, nil
	}

	reports, err := r.next.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, reports)
	return reports, nil
}

func (r *cachedReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	key := reportKeyPrefix + id
	if reports, ok := r.load(ctx, key); ok && len(reports) == 1 {
		return reports[0], nil
	}

	report, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, []*entity.Report{report})
	return report, nil
}

func listKey(generation int64, filter repository.ReportFilter) string {
	return fmt.Sprintf("%s%d:%s:%s", listKeyPrefix, generation, filter.Type, filter.Category)
}

func (r *cachedReportRepository) load(ctx context.Context, key string) ([]*entity.Report, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("Report cache: get %s failed: %v", key, err)
		return nil, false
	}

	reports, err := decodeCachedReports(data)
	if err != nil {
		logger.Warn("Report cache: dropping undecodable entry %s: %v", key, err)
		_ = r.client.Del(ctx, key).Err()
		return nil, false
	}
	return reports, true
}

func (r *cachedReportRepository) store(ctx context.Context, key string, reports []*entity.Report) {
	data, err := encodeCachedReports(reports)
	if err != nil {
		logger.Warn("Report cache: encode %s failed: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		logger.Warn("Report cache: set %s failed: %v", key, err)
	}
}

func encodeCachedReports(reports []*entity.Report) ([]byte, error) {
	entries := make([]cachedReport, len(reports))
	for i, report := range reports {
		entries[i] = cachedReport{
			ID:     report.ID,
			Record: newReportRecord(report, report.CreatedAt, report.UpdatedAt),
		}
	}
	return json.Marshal(entries)
}

func decodeCachedReports(data []byte) ([]*entity.Report, error) {
	var entries []cachedReport
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	reports := make([]*entity.Report, len(entries))
	for i, entry := range entries {
		report, err := entry.Record.toEntity(entry.ID)
		if err != nil {
			return nil, err
		}
		reports[i] = report
	}
	return reports, nil
}
