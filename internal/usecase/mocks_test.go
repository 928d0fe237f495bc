package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
)

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) Create(ctx context.Context, report *entity.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	args := m.Called(ctx, filter)
	reports, _ := args.Get(0).([]*entity.Report)
	return reports, args.Error(1)
}

func (m *mockReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	args := m.Called(ctx, id)
	report, _ := args.Get(0).(*entity.Report)
	return report, args.Error(1)
}

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Upload(ctx context.Context, file entity.ImageFile) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *mockImageStore) Delete(ctx context.Context, fileURL string) error {
	args := m.Called(ctx, fileURL)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReportCreated(ctx context.Context, report *entity.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) ReportCreated(reportType string) {
	m.Called(reportType)
}

func (m *mockMetrics) ImageUploaded(ok bool) {
	m.Called(ok)
}

func fileNamed(name string) interface{} {
	return mock.MatchedBy(func(f entity.ImageFile) bool { return f.Filename == name })
}

func imageFile(name string) entity.ImageFile {
	return entity.ImageFile{Filename: name, ContentType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}}
}
