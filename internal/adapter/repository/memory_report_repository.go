package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
	"campusfinder/pkg/errors"
)

// MemoryReportRepository keeps reports in process memory. It backs local
// development (REPORT_STORE=memory) and serves as the fixture in tests.
type MemoryReportRepository struct {
	mu      sync.RWMutex
	reports []*entity.Report
	byID    map[string]*entity.Report
	now     func() time.Time
}

var _ repository.ReportRepository = (*MemoryReportRepository)(nil)

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{
		byID: make(map[string]*entity.Report),
		now:  time.Now,
	}
}

// WithClock replaces the timestamp source.
func (r *MemoryReportRepository) WithClock(now func() time.Time) *MemoryReportRepository {
	r.now = now
	return r
}

func (r *MemoryReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if err := ctx.Err(); err != nil {
		return errors.Persistence("Failed to create report", err)
	}
	if err := checkConstraints(report); err != nil {
		return err
	}

	now := r.now().UTC()
	report.ID = uuid.New().String()
	report.CreatedAt = now
	report.UpdatedAt = now
	report.Date = entity.CalendarDate(report.Date)

	stored := cloneReport(report)

	r.mu.Lock()
	r.reports = append(r.reports, stored)
	r.byID[stored.ID] = stored
	r.mu.Unlock()

	return nil
}

func (r *MemoryReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Persistence("Failed to list reports", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Walk newest insertion first so equal timestamps list the later write first.
	reports := []*entity.Report{}
	for i := len(r.reports) - 1; i >= 0; i-- {
		report := r.reports[i]
		if filter.Type != "" && report.Type != filter.Type {
			continue
		}
		if filter.Category != "" && report.Category != filter.Category {
			continue
		}
		reports = append(reports, cloneReport(report))
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	return reports, nil
}

func (r *MemoryReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Persistence("Failed to get report", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("Report", nil)
	}
	return cloneReport(report), nil
}

// Len returns the number of stored reports.
func (r *MemoryReportRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports)
}
