package usecase

import (
	"context"

	"campusfinder/internal/domain/entity"
)

// EventPublisher announces persisted reports to downstream consumers.
type EventPublisher interface {
	PublishReportCreated(ctx context.Context, report *entity.Report) error
}

type SubmissionMetrics interface {
	ReportCreated(reportType string)
	ImageUploaded(ok bool)
}
