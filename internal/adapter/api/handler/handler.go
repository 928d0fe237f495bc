package handler

import (
	"campusfinder/internal/usecase"
)

var (
	reportHandler *ReportHandler
	uploadHandler *UploadHandler
)

func Setup(
	submissionUseCase *usecase.ReportSubmissionUseCase,
	queryUseCase *usecase.ReportQueryUseCase,
	maxFileSize int64,
) {
	reportHandler = NewReportHandler(submissionUseCase, queryUseCase, maxFileSize)
	uploadHandler = NewUploadHandler(submissionUseCase, maxFileSize)
}

func GetReportHandler() *ReportHandler {
	return reportHandler
}

func GetUploadHandler() *UploadHandler {
	return uploadHandler
}
