package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
	"campusfinder/pkg/errors"
)

var today = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func newSubmission(repo *mockReportRepository, store *mockImageStore, opts SubmissionOptions) *ReportSubmissionUseCase {
	return NewReportSubmissionUseCase(repo, store, opts).WithClock(func() time.Time { return today })
}

func floatPtr(v float64) *float64 { return &v }

func TestSubmitFoundInAppWithTwoImages(t *testing.T) {
	repo := new(mockReportRepository)
	store := new(mockImageStore)
	publisher := new(mockPublisher)

	store.On("Upload", mock.Anything, fileNamed("a.jpg")).Return("https://img/A", nil).Once()
	store.On("Upload", mock.Anything, fileNamed("b.jpg")).Return("https://img/B", nil).Once()

	var created *entity.Report
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Report")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.Report)
			created.ID = "report-1"
			created.CreatedAt = today
			created.UpdatedAt = today
		}).
		Return(nil).Once()
	publisher.On("PublishReportCreated", mock.Anything, mock.AnythingOfType("*entity.Report")).Return(nil).Once()

	uc := newSubmission(repo, store, SubmissionOptions{Publisher: publisher})
	report, err := uc.Submit(context.Background(), Draft{
		Type:          "found",
		Category:      "electronics",
		Name:          "iPhone 13",
		ContactMethod: "inapp",
		ContactInfo:   "ignored@campus.edu",
		Images:        []entity.ImageFile{imageFile("a.jpg"), imageFile("b.jpg")},
	})

	require.NoError(t, err)
	assert.Equal(t, "report-1", report.ID)
	assert.Same(t, created, report)
	assert.Equal(t, []entity.Image{{URL: "https://img/A"}, {URL: "https://img/B"}}, report.Images)
	assert.Equal(t, entity.ContactInApp, report.Contact.Method())
	assert.Nil(t, report.Contact.Info())
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), report.Date)
	assert.Nil(t, report.Coordinates)

	store.AssertNumberOfCalls(t, "Upload", 2)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	repo.AssertNumberOfCalls(t, "Create", 1)
	publisher.AssertExpectations(t)
}

func TestSubmitValidationFailsBeforeAnyIO(t *testing.T) {
	cases := []struct {
		name   string
		draft  Draft
		fields []string
	}{
		{
			name:   "missing name",
			draft:  Draft{Type: "lost", Category: "books", ContactMethod: "inapp"},
			fields: []string{"name"},
		},
		{
			name:   "missing category",
			draft:  Draft{Type: "lost", Name: "Calculus textbook", ContactMethod: "inapp"},
			fields: []string{"category"},
		},
		{
			name:   "email without contact info",
			draft:  Draft{Type: "lost", Category: "books", Name: "Notebook", ContactMethod: "email"},
			fields: []string{"contactInfo"},
		},
		{
			name:   "malformed email",
			draft:  Draft{Type: "found", Category: "ids", Name: "Student card", ContactMethod: "email", ContactInfo: "not-an-address"},
			fields: []string{"contactInfo"},
		},
		{
			name:   "phone without contact info",
			draft:  Draft{Type: "found", Category: "other", Name: "Keys", ContactMethod: "phone", ContactInfo: "   "},
			fields: []string{"contactInfo"},
		},
		{
			name: "everything wrong at once",
			draft: Draft{
				Type:          "stolen",
				Category:      "bags",
				ContactMethod: "pigeon",
				Latitude:      floatPtr(91),
				Longitude:     floatPtr(10),
				Date:          "yesterday",
				Images:        []entity.ImageFile{imageFile("1"), imageFile("2"), imageFile("3"), imageFile("4")},
			},
			fields: []string{"type", "category", "name", "contactMethod", "latitude", "date", "images"},
		},
		{
			name:   "latitude without longitude",
			draft:  Draft{Type: "lost", Category: "clothing", Name: "Scarf", ContactMethod: "inapp", Latitude: floatPtr(40)},
			fields: []string{"longitude"},
		},
		{
			name:   "empty image file",
			draft:  Draft{Type: "lost", Category: "clothing", Name: "Scarf", ContactMethod: "inapp", Images: []entity.ImageFile{{Filename: "empty.jpg"}}},
			fields: []string{"images"},
		},
		{
			name: "too many images across files and urls",
			draft: Draft{
				Type: "lost", Category: "clothing", Name: "Scarf", ContactMethod: "inapp",
				Images:    []entity.ImageFile{imageFile("a"), imageFile("b")},
				ImageURLs: []string{"https://img/1", "https://img/2"},
			},
			fields: []string{"images"},
		},
		{
			name: "image url with a script scheme",
			draft: Draft{
				Type: "found", Category: "ids", Name: "Student card", ContactMethod: "inapp",
				ImageURLs: []string{"https://img/1", "javascript:alert(document.cookie)"},
			},
			fields: []string{"imageUrls"},
		},
		{
			name: "blank image url",
			draft: Draft{
				Type: "found", Category: "ids", Name: "Student card", ContactMethod: "inapp",
				ImageURLs: []string{"  "},
			},
			fields: []string{"imageUrls"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockReportRepository)
			store := new(mockImageStore)

			report, err := newSubmission(repo, store, SubmissionOptions{}).Submit(context.Background(), tc.draft)

			assert.Nil(t, report)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.CodeValidation))
			assert.Equal(t, tc.fields, errors.Fields(err))
			store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitUploadFailureMidBatchPersistsNothing(t *testing.T) {
	repo := new(mockReportRepository)
	store := new(mockImageStore)
	metrics := new(mockMetrics)

	store.On("Upload", mock.Anything, fileNamed("1.jpg")).Return("https://img/1", nil).Once()
	store.On("Upload", mock.Anything, fileNamed("2.jpg")).Return("", errors.Upload("bucket unavailable", nil)).Once()
	store.On("Upload", mock.Anything, fileNamed("3.jpg")).Return("https://img/3", nil).Once()
	store.On("Delete", mock.Anything, "https://img/1").Return(nil).Once()
	store.On("Delete", mock.Anything, "https://img/3").Return(stderrors.New("already gone")).Once()
	metrics.On("ImageUploaded", true).Return().Twice()
	metrics.On("ImageUploaded", false).Return().Once()

	uc := newSubmission(repo, store, SubmissionOptions{Metrics: metrics})
	report, err := uc.Submit(context.Background(), Draft{
		Type:          "lost",
		Category:      "accessories",
		Name:          "Blue Backpack",
		ContactMethod: "phone",
		ContactInfo:   "+1 217 555 0100",
		Images:        []entity.ImageFile{imageFile("1.jpg"), imageFile("2.jpg"), imageFile("3.jpg")},
	})

	assert.Nil(t, report)
	assert.True(t, errors.Is(err, errors.CodeUpload))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	metrics.AssertExpectations(t)
	metrics.AssertNotCalled(t, "ReportCreated", mock.Anything)
}

func TestSubmitPersistenceFailureCompensatesUploadsOnly(t *testing.T) {
	repo := new(mockReportRepository)
	store := new(mockImageStore)

	store.On("Upload", mock.Anything, fileNamed("new.jpg")).Return("https://img/new", nil).Once()
	store.On("Delete", mock.Anything, "https://img/new").Return(nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.Persistence("Failed to create report", stderrors.New("document too large"))).Once()

	uc := newSubmission(repo, store, SubmissionOptions{})
	_, err := uc.Submit(context.Background(), Draft{
		Type:          "found",
		Category:      "books",
		Name:          "Organic Chemistry",
		ContactMethod: "inapp",
		Images:        []entity.ImageFile{imageFile("new.jpg")},
		ImageURLs:     []string{"https://img/client-side"},
	})

	assert.True(t, errors.Is(err, errors.CodePersistence))
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Delete", mock.Anything, "https://img/client-side")
}

func TestSubmitUnconfirmedWriteKeepsUploads(t *testing.T) {
	cases := map[string]error{
		"deadline exceeded": errors.Persistence("Failed to create report", context.DeadlineExceeded),
		"store reports unconfirmed write": errors.Persistence("Failed to create report",
			fmt.Errorf("%w: %w", repository.ErrWriteUnconfirmed, stderrors.New("connection reset"))),
	}

	for name, createErr := range cases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockReportRepository)
			store := new(mockImageStore)

			store.On("Upload", mock.Anything, fileNamed("a.jpg")).Return("https://img/A", nil).Once()
			var persisted *entity.Report
			repo.On("Create", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) {
					persisted = args.Get(1).(*entity.Report)
				}).
				Return(createErr).Once()

			_, err := newSubmission(repo, store, SubmissionOptions{}).Submit(context.Background(), Draft{
				Type: "lost", Category: "electronics", Name: "Headphones", ContactMethod: "inapp",
				Images: []entity.ImageFile{imageFile("a.jpg")},
			})

			assert.True(t, errors.Is(err, errors.CodePersistence))
			require.NotNil(t, persisted)
			assert.Equal(t, []string{"https://img/A"}, persisted.ImageURLs())
			store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitCancelledContextSkipsIO(t *testing.T) {
	repo := new(mockReportRepository)
	store := new(mockImageStore)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSubmission(repo, store, SubmissionOptions{}).Submit(ctx, Draft{
		Type: "lost", Category: "other", Name: "Water bottle", ContactMethod: "inapp",
		Images: []entity.ImageFile{imageFile("bottle.jpg")},
	})

	assert.Error(t, err)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitInFlightWorkIsDetachedFromCaller(t *testing.T) {
	repo := new(mockReportRepository)
	store := new(mockImageStore)

	ctx, cancel := context.WithCancel(context.Background())

	store.On("Upload", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return("https://img/late", nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			uploadCtx := args.Get(0).(context.Context)
			assert.NoError(t, uploadCtx.Err())
			_, hasDeadline := uploadCtx.Deadline()
			assert.True(t, hasDeadline)
		}).
		Return(nil).Once()

	report, err := newSubmission(repo, store, SubmissionOptions{}).Submit(ctx, Draft{
		Type: "found", Category: "electronics", Name: "Charger", ContactMethod: "inapp",
		Images: []entity.ImageFile{imageFile("charger.jpg")},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/late"}, report.ImageURLs())
}

func TestSubmitJSONDraftKeepsSuppliedFields(t *testing.T) {
	repo := new(mockReportRepository)
	store := new(mockImageStore)
	metrics := new(mockMetrics)
	publisher := new(mockPublisher)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	metrics.On("ReportCreated", "lost").Return().Once()
	publisher.On("PublishReportCreated", mock.Anything, mock.Anything).Return(stderrors.New("nats down")).Once()

	uc := newSubmission(repo, store, SubmissionOptions{Metrics: metrics, Publisher: publisher})
	report, err := uc.Submit(context.Background(), Draft{
		Type:          " Lost ",
		Category:      "Electronics",
		Name:          "  MacBook Air  ",
		Description:   "silver, sticker on lid",
		Location:      "Engineering Hall",
		Landmark:      "room 101",
		Latitude:      floatPtr(40.1138),
		Longitude:     floatPtr(-88.2249),
		Date:          "2026-10-15",
		ContactMethod: "email",
		ContactInfo:   "owner@campus.edu",
		ImageURLs:     []string{"https://img/1"},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ReportTypeLost, report.Type)
	assert.Equal(t, entity.CategoryElectronics, report.Category)
	assert.Equal(t, "MacBook Air", report.Name)
	assert.Equal(t, &entity.Coordinates{Latitude: 40.1138, Longitude: -88.2249}, report.Coordinates)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), report.Date)
	require.NotNil(t, report.Contact.Info())
	assert.Equal(t, "owner@campus.edu", *report.Contact.Info())
	assert.Equal(t, []string{"https://img/1"}, report.ImageURLs())
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	metrics.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestUploadImage(t *testing.T) {
	store := new(mockImageStore)
	store.On("Upload", mock.Anything, fileNamed("ok.png")).Return("https://img/ok", nil).Once()
	store.On("Upload", mock.Anything, fileNamed("bad.png")).Return("", stderrors.New("connection reset")).Once()

	uc := newSubmission(new(mockReportRepository), store, SubmissionOptions{})

	url, err := uc.UploadImage(context.Background(), imageFile("ok.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://img/ok", url)

	_, err = uc.UploadImage(context.Background(), imageFile("bad.png"))
	assert.True(t, errors.Is(err, errors.CodeUpload))

	_, err = uc.UploadImage(context.Background(), entity.ImageFile{Filename: "empty.png"})
	assert.True(t, errors.Is(err, errors.CodeValidation))
	store.AssertExpectations(t)
}
