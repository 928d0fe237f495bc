package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
	"campusfinder/pkg/errors"
)

// StatusAll disables the status filter.
const StatusAll entity.ItemStatus = "all"

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortNameAsc   SortOrder = "a-z"
	SortNameDesc  SortOrder = "z-a"
	defaultSortBy           = SortNewest
)

// ParseSortOrder maps a query value to a sort order. Empty means newest.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(value))); order {
	case "":
		return defaultSortBy, true
	case SortNewest, SortOldest, SortNameAsc, SortNameDesc:
		return order, true
	default:
		return "", false
	}
}

// DayRange bounds the whole days elapsed since a report's date, inclusive.
type DayRange struct {
	Min int
	Max int
}

// ClientFilter narrows a repository listing. Zero values match everything.
type ClientFilter struct {
	Status     entity.ItemStatus
	Categories []entity.Category
	Locations  []string
	SearchText string
	DateRange  *DayRange
}

type ReportQueryUseCase struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

func NewReportQueryUseCase(reportRepo repository.ReportRepository) *ReportQueryUseCase {
	return &ReportQueryUseCase{
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

func (uc *ReportQueryUseCase) WithClock(now func() time.Time) *ReportQueryUseCase {
	uc.now = now
	return uc
}

// Query lists reports matching the server filter, narrows them with the
// client filter and sorts them. No match yields an empty slice.
func (uc *ReportQueryUseCase) Query(ctx context.Context, server repository.ReportFilter, client ClientFilter, order SortOrder) ([]*entity.Report, error) {
	reports, err := uc.reportRepo.List(ctx, server)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Persistence("Failed to list reports", err)
	}

	match := newClientMatcher(client, uc.now())
	filtered := make([]*entity.Report, 0, len(reports))
	for _, report := range reports {
		if match(report) {
			filtered = append(filtered, report)
		}
	}

	sortReports(filtered, order)
	return filtered, nil
}

func (uc *ReportQueryUseCase) GetReport(ctx context.Context, id string) (*entity.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NotFound("Report", nil)
	}

	report, err := uc.reportRepo.GetByID(ctx, id)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Persistence("Failed to get report", err)
	}
	return report, nil
}

func newClientMatcher(filter ClientFilter, now time.Time) func(*entity.Report) bool {
	categories := make(map[entity.Category]struct{}, len(filter.Categories))
	for _, c := range filter.Categories {
		categories[c] = struct{}{}
	}

	locations := make(map[string]struct{}, len(filter.Locations))
	for _, l := range filter.Locations {
		if l = normalize(l); l != "" {
			locations[l] = struct{}{}
		}
	}

	search := normalize(filter.SearchText)
	status := entity.ItemStatus(normalize(string(filter.Status)))

	return func(r *entity.Report) bool {
		if status != "" && status != StatusAll && r.Status() != status {
			return false
		}
		if len(categories) > 0 {
			if _, ok := categories[r.Category]; !ok {
				return false
			}
		}
		if len(locations) > 0 {
			if _, ok := locations[normalize(r.Location)]; !ok {
				return false
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(string(r.Category), search) &&
			!strings.Contains(strings.ToLower(r.Location), search) {
			return false
		}
		if filter.DateRange != nil {
			days := r.DaysSince(now)
			if days < filter.DateRange.Min || days > filter.DateRange.Max {
				return false
			}
		}
		return true
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sortReports orders in place. Date orders are stable over the repository's
// createdAt-desc order; name orders fall back to id.
func sortReports(reports []*entity.Report, order SortOrder) {
	switch order {
	case SortOldest:
		sort.SliceStable(reports, func(i, j int) bool {
			return reports[i].Date.Before(reports[j].Date)
		})
	case SortNameAsc, SortNameDesc:
		desc := order == SortNameDesc
		sort.Slice(reports, func(i, j int) bool {
			a, b := strings.ToLower(reports[i].Name), strings.ToLower(reports[j].Name)
			if a != b {
				return (a < b) != desc
			}
			return reports[i].ID < reports[j].ID
		})
	default:
		sort.SliceStable(reports, func(i, j int) bool {
			return reports[i].Date.After(reports[j].Date)
		})
	}
}
