package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
	"campusfinder/internal/domain/service"
	"campusfinder/pkg/errors"
	"campusfinder/pkg/logger"
)

const (
	defaultUploadTimeout      = 30 * time.Second
	defaultPersistenceTimeout = 8 * time.Second
	publishTimeout            = 5 * time.Second
	deleteTimeout             = 10 * time.Second
)

// Draft is unvalidated submission input. Images are raw files still to be
// uploaded; ImageURLs point at objects the client already uploaded.
type Draft struct {
	Type          string
	Category      string
	Name          string
	Description   string
	Location      string
	Landmark      string
	Latitude      *float64
	Longitude     *float64
	Date          string
	ContactMethod string
	ContactInfo   string
	Images        []entity.ImageFile
	ImageURLs     []string
}

type SubmissionOptions struct {
	UploadTimeout      time.Duration
	PersistenceTimeout time.Duration
	Publisher          EventPublisher
	Metrics            SubmissionMetrics
}

type ReportSubmissionUseCase struct {
	reportRepo         repository.ReportRepository
	imageStore         service.ImageStore
	publisher          EventPublisher
	metrics            SubmissionMetrics
	validate           *validator.Validate
	uploadTimeout      time.Duration
	persistenceTimeout time.Duration
	now                func() time.Time
}

func NewReportSubmissionUseCase(reportRepo repository.ReportRepository, imageStore service.ImageStore, opts SubmissionOptions) *ReportSubmissionUseCase {
	uc := &ReportSubmissionUseCase{
		reportRepo:         reportRepo,
		imageStore:         imageStore,
		publisher:          opts.Publisher,
		metrics:            opts.Metrics,
		validate:           validator.New(),
		uploadTimeout:      opts.UploadTimeout,
		persistenceTimeout: opts.PersistenceTimeout,
		now:                time.Now,
	}
	if uc.uploadTimeout <= 0 {
		uc.uploadTimeout = defaultUploadTimeout
	}
	if uc.persistenceTimeout <= 0 {
		uc.persistenceTimeout = defaultPersistenceTimeout
	}
	return uc
}

// WithClock replaces the source of "today" used for undated drafts.
func (uc *ReportSubmissionUseCase) WithClock(now func() time.Time) *ReportSubmissionUseCase {
	uc.now = now
	return uc
}

// Submit validates the draft, uploads its images, and persists the report.
// Nothing leaves the process when validation fails. Once an upload or the
// store write has started it is bounded by its own timeout rather than by
// ctx. Objects uploaded for a submission that then fails are deleted again,
// unless the store cannot say whether the report was written.
func (uc *ReportSubmissionUseCase) Submit(ctx context.Context, draft Draft) (*entity.Report, error) {
	report, err := uc.buildReport(draft)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.BadRequest("Submission cancelled", err)
	}

	uploaded, err := uc.uploadAll(ctx, draft.Images)
	if err != nil {
		return nil, err
	}

	urls := append(trimmedURLs(draft.ImageURLs), uploaded...)
	report.Images = make([]entity.Image, len(urls))
	for i, url := range urls {
		report.Images[i] = entity.Image{URL: url}
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.persistenceTimeout)
	defer cancel()

	if err := uc.reportRepo.Create(persistCtx, report); err != nil {
		if writeUnconfirmed(err) {
			logger.Warn("Report write not confirmed, keeping %d uploaded images: %v", len(uploaded), err)
		} else {
			uc.compensate(ctx, uploaded)
		}
		if errors.Is(err, errors.CodePersistence) {
			return nil, err
		}
		return nil, errors.Persistence("Failed to save report", err)
	}

	logger.Info("Report %s created (%s/%s, %d images)", report.ID, report.Type, report.Category, len(report.Images))
	if uc.metrics != nil {
		uc.metrics.ReportCreated(string(report.Type))
	}
	uc.publish(ctx, report)

	return report, nil
}

// UploadImage stores a single image outside of a submission.
func (uc *ReportSubmissionUseCase) UploadImage(ctx context.Context, file entity.ImageFile) (string, error) {
	if file.Size() == 0 {
		return "", errors.Validation("Image file is empty", []string{"file"})
	}
	if err := ctx.Err(); err != nil {
		return "", errors.BadRequest("Upload cancelled", err)
	}

	url, err := uc.uploadOne(ctx, file)
	if err != nil {
		return "", toUploadError(err)
	}
	return url, nil
}

func (uc *ReportSubmissionUseCase) buildReport(draft Draft) (*entity.Report, error) {
	var fields []string

	reportType := entity.ReportType(strings.ToLower(strings.TrimSpace(draft.Type)))
	if !reportType.Valid() {
		fields = append(fields, "type")
	}

	category := entity.Category(strings.ToLower(strings.TrimSpace(draft.Category)))
	if !category.Valid() {
		fields = append(fields, "category")
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		fields = append(fields, "name")
	}

	method := entity.ContactMethod(strings.ToLower(strings.TrimSpace(draft.ContactMethod)))
	info := strings.TrimSpace(draft.ContactInfo)
	switch method {
	case entity.ContactInApp:
	case entity.ContactEmail:
		if uc.validate.Var(info, "required,email") != nil {
			fields = append(fields, "contactInfo")
		}
	case entity.ContactPhone:
		if uc.validate.Var(info, "required,max=32") != nil {
			fields = append(fields, "contactInfo")
		}
	default:
		fields = append(fields, "contactMethod")
	}

	var coords *entity.Coordinates
	switch {
	case draft.Latitude == nil && draft.Longitude == nil:
	case draft.Latitude == nil:
		fields = append(fields, "latitude")
	case draft.Longitude == nil:
		fields = append(fields, "longitude")
	default:
		lat, lng := *draft.Latitude, *draft.Longitude
		if math.IsNaN(lat) || lat < -90 || lat > 90 {
			fields = append(fields, "latitude")
		}
		if math.IsNaN(lng) || lng < -180 || lng > 180 {
			fields = append(fields, "longitude")
		}
		coords = &entity.Coordinates{Latitude: lat, Longitude: lng}
	}

	var date time.Time
	if strings.TrimSpace(draft.Date) == "" {
		date = entity.CalendarDate(uc.now())
	} else if parsed, err := entity.ParseDate(draft.Date); err != nil {
		fields = append(fields, "date")
	} else {
		date = entity.CalendarDate(parsed)
	}

	if len(draft.Images)+len(draft.ImageURLs) > entity.MaxImages || !imagesUsable(draft) {
		fields = append(fields, "images")
	}
	for _, url := range draft.ImageURLs {
		if uc.validate.Var(strings.TrimSpace(url), "required,http_url") != nil {
			fields = append(fields, "imageUrls")
			break
		}
	}

	if len(fields) > 0 {
		return nil, errors.Validation(fmt.Sprintf("Invalid report: %s", strings.Join(fields, ", ")), fields)
	}

	contact, err := entity.NewContact(method, info)
	if err != nil {
		return nil, errors.Validation(err.Error(), []string{"contactInfo"})
	}

	return &entity.Report{
		Type:        reportType,
		Category:    category,
		Name:        name,
		Description: strings.TrimSpace(draft.Description),
		Location:    strings.TrimSpace(draft.Location),
		Landmark:    strings.TrimSpace(draft.Landmark),
		Coordinates: coords,
		Date:        date,
		Contact:     contact,
	}, nil
}

func imagesUsable(draft Draft) bool {
	for _, file := range draft.Images {
		if file.Size() == 0 {
			return false
		}
	}
	return true
}

func trimmedURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		out = append(out, strings.TrimSpace(url))
	}
	return out
}

// uploadAll uploads files concurrently and returns their URLs in input order.
// A failure deletes whatever the batch already stored.
func (uc *ReportSubmissionUseCase) uploadAll(ctx context.Context, files []entity.ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	urls := make([]string, len(files))

	var g errgroup.Group
	g.SetLimit(entity.MaxImages)
	for i, file := range files {
		g.Go(func() error {
			url, err := uc.uploadOne(ctx, file)
			if err != nil {
				return fmt.Errorf("image %d (%s): %w", i+1, file.Filename, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var stored []string
		for _, url := range urls {
			if url != "" {
				stored = append(stored, url)
			}
		}
		uc.compensate(ctx, stored)
		return nil, toUploadError(err)
	}

	return urls, nil
}

func (uc *ReportSubmissionUseCase) uploadOne(ctx context.Context, file entity.ImageFile) (string, error) {
	uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.uploadTimeout)
	defer cancel()

	url, err := uc.imageStore.Upload(uploadCtx, file)
	if uc.metrics != nil {
		uc.metrics.ImageUploaded(err == nil)
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

func toUploadError(err error) error {
	if appErr, ok := errors.As(err); ok && appErr.Code == errors.CodeUpload {
		return errors.Upload(appErr.Message, err)
	}
	return errors.Upload("Failed to upload image", err)
}

// writeUnconfirmed reports whether a failed Create may still have committed.
// Images referenced by such a report must survive, so they are left to
// out-of-band cleanup.
func writeUnconfirmed(err error) bool {
	return stderrors.Is(err, repository.ErrWriteUnconfirmed) ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, context.Canceled)
}

func (uc *ReportSubmissionUseCase) compensate(ctx context.Context, urls []string) {
	for _, url := range urls {
		deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteTimeout)
		if err := uc.imageStore.Delete(deleteCtx, url); err != nil {
			logger.Warn("Failed to delete orphaned image %s: %v", url, err)
		} else {
			logger.Debug("Deleted orphaned image %s", url)
		}
		cancel()
	}
}

func (uc *ReportSubmissionUseCase) publish(ctx context.Context, report *entity.Report) {
	if uc.publisher == nil {
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := uc.publisher.PublishReportCreated(publishCtx, report); err != nil {
		logger.Warn("Failed to publish report.created for %s: %v", report.ID, err)
	}
}
