package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
	"campusfinder/pkg/errors"
)

const reportsCollection = "reports"

type firestoreReportRepository struct {
	client *firestore.Client
}

func NewFirestoreReportRepository(client *firestore.Client) repository.ReportRepository {
	return &firestoreReportRepository{
		client: client,
	}
}

func (r *firestoreReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if err := checkConstraints(report); err != nil {
		return err
	}

	doc := r.client.Collection(reportsCollection).NewDoc()
	now := time.Now().UTC().Truncate(time.Microsecond)

	if _, err := doc.Create(ctx, newReportRecord(report, now, now)); err != nil {
		switch status.Code(err) {
		case codes.DeadlineExceeded, codes.Canceled, codes.Unavailable, codes.Unknown:
			err = fmt.Errorf("%w: %w", repository.ErrWriteUnconfirmed, err)
		}
		return errors.Persistence("Failed to create report", err)
	}

	report.ID = doc.ID
	report.CreatedAt = now
	report.UpdatedAt = now
	report.Date = entity.CalendarDate(report.Date)
	return nil
}

func (r *firestoreReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	query := r.client.Collection(reportsCollection).Query

	if filter.Type != "" {
		query = query.Where("type", "==", string(filter.Type))
	}
	if filter.Category != "" {
		query = query.Where("category", "==", string(filter.Category))
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	reports := []*entity.Report{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Persistence("Failed to list reports", err)
		}

		report, err := decodeFirestoreReport(doc)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

func (r *firestoreReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	// Doc returns nil for ids that are empty or contain a path separator.
	if id == "" || strings.Contains(id, "/") {
		return nil, errors.NotFound("Report", nil)
	}

	doc, err := r.client.Collection(reportsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Report", err)
		}
		return nil, errors.Persistence("Failed to get report", err)
	}

	return decodeFirestoreReport(doc)
}

func decodeFirestoreReport(doc *firestore.DocumentSnapshot) (*entity.Report, error) {
	var rec reportRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, errors.Persistence("Failed to parse report data", err)
	}

	report, err := rec.toEntity(doc.Ref.ID)
	if err != nil {
		return nil, errors.Persistence("Stored report is inconsistent", err)
	}
	return report, nil
}
