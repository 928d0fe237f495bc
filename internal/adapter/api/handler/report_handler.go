package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
	"campusfinder/internal/usecase"
	"campusfinder/pkg/errors"
	"campusfinder/pkg/logger"
	"campusfinder/pkg/response"
	"campusfinder/pkg/utils"
)

type ReportHandler struct {
	submissionUseCase *usecase.ReportSubmissionUseCase
	queryUseCase      *usecase.ReportQueryUseCase
	maxFileSize       int64
}

func NewReportHandler(submissionUseCase *usecase.ReportSubmissionUseCase, queryUseCase *usecase.ReportQueryUseCase, maxFileSize int64) *ReportHandler {
	return &ReportHandler{
		submissionUseCase: submissionUseCase,
		queryUseCase:      queryUseCase,
		maxFileSize:       maxFileSize,
	}
}

type createReportRequest struct {
	Type          string   `json:"type" validate:"max=16"`
	Category      string   `json:"category" validate:"max=32"`
	Name          string   `json:"name" validate:"max=200"`
	Description   string   `json:"description" validate:"max=2000"`
	Location      string   `json:"location" validate:"max=200"`
	Landmark      string   `json:"landmark" validate:"max=200"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Date          string   `json:"date"`
	ContactMethod string   `json:"contactMethod" validate:"max=16"`
	ContactInfo   *string  `json:"contactInfo" validate:"omitempty,max=254"`
	ImageURLs     []string `json:"imageUrls" validate:"max=3,dive,http_url"`
}

func (r createReportRequest) draft() usecase.Draft {
	draft := usecase.Draft{
		Type:          r.Type,
		Category:      r.Category,
		Name:          r.Name,
		Description:   r.Description,
		Location:      r.Location,
		Landmark:      r.Landmark,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Date:          r.Date,
		ContactMethod: r.ContactMethod,
		ImageURLs:     r.ImageURLs,
	}
	if r.ContactInfo != nil {
		draft.ContactInfo = *r.ContactInfo
	}
	return draft
}

type reportResponse struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Category      string         `json:"category"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Location      string         `json:"location"`
	Landmark      string         `json:"landmark"`
	Latitude      *float64       `json:"latitude"`
	Longitude     *float64       `json:"longitude"`
	Date          string         `json:"date"`
	ContactMethod string         `json:"contactMethod"`
	ContactInfo   *string        `json:"contactInfo"`
	Images        []entity.Image `json:"images"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func toReportResponse(r *entity.Report) reportResponse {
	resp := reportResponse{
		ID:            r.ID,
		Type:          string(r.Type),
		Category:      string(r.Category),
		Name:          r.Name,
		Description:   r.Description,
		Location:      r.Location,
		Landmark:      r.Landmark,
		Date:          r.Date.Format(entity.DateLayout),
		ContactMethod: string(r.Contact.Method()),
		ContactInfo:   r.Contact.Info(),
		Images:        r.Images,
		Status:        string(r.Status()),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []entity.Image{}
	}
	if r.Coordinates != nil {
		lat, lng := r.Coordinates.Latitude, r.Coordinates.Longitude
		resp.Latitude = &lat
		resp.Longitude = &lng
	}
	return resp
}

// CreateReport accepts a JSON draft whose images were uploaded beforehand.
func (h *ReportHandler) CreateReport(c echo.Context) error {
	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	report, err := h.submissionUseCase.Submit(c.Request().Context(), req.draft())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"reportId": report.ID,
		"message":  "Report created successfully",
	})
}

// SubmitReport accepts the multipart form: draft fields plus up to three
// "images" parts, uploaded server side.
func (h *ReportHandler) SubmitReport(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, errors.BadRequest("Expected a multipart form", err))
	}

	draft := usecase.Draft{
		Type:          c.FormValue("type"),
		Category:      c.FormValue("category"),
		Name:          c.FormValue("name"),
		Description:   c.FormValue("description"),
		Location:      c.FormValue("location"),
		Landmark:      c.FormValue("landmark"),
		Date:          c.FormValue("date"),
		ContactMethod: c.FormValue("contactMethod"),
		ContactInfo:   c.FormValue("contactInfo"),
		ImageURLs:     form.Value["imageUrls"],
	}

	var badFields []string
	if draft.Latitude, err = parseOptionalFloat(c.FormValue("latitude")); err != nil {
		badFields = append(badFields, "latitude")
	}
	if draft.Longitude, err = parseOptionalFloat(c.FormValue("longitude")); err != nil {
		badFields = append(badFields, "longitude")
	}
	if len(badFields) > 0 {
		return response.Error(c, errors.Validation("Coordinates must be numbers", badFields))
	}

	files := form.File["images"]
	if len(files)+len(draft.ImageURLs) > entity.MaxImages {
		return response.Error(c, errors.Validation("A report may have at most 3 images", []string{"images"}))
	}
	for _, fh := range files {
		file, err := readImageFile(fh, h.maxFileSize)
		if err != nil {
			logger.Warn("Rejected image %q: %v", fh.Filename, err)
			return response.Error(c, err)
		}
		draft.Images = append(draft.Images, file)
	}

	report, err := h.submissionUseCase.Submit(c.Request().Context(), draft)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"reportId": report.ID,
		"report":   toReportResponse(report),
	})
}

func (h *ReportHandler) ListReports(c echo.Context) error {
	server, client, order, err := parseListQuery(c)
	if err != nil {
		return response.Error(c, err)
	}

	reports, err := h.queryUseCase.Query(c.Request().Context(), server, client, order)
	if err != nil {
		return response.Error(c, err)
	}

	body := map[string]interface{}{}
	if page, ok := utils.GetPaginationParams(c); ok {
		start, end := page.Bounds(len(reports))
		body["pagination"] = response.NewPagination(len(reports), page.Page, page.PageSize)
		reports = reports[start:end]
	}

	items := make([]reportResponse, len(reports))
	for i, report := range reports {
		items[i] = toReportResponse(report)
	}
	body["reports"] = items

	return c.JSON(http.StatusOK, body)
}

func (h *ReportHandler) GetReport(c echo.Context) error {
	report, err := h.queryUseCase.GetReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"report": toReportResponse(report),
	})
}

func parseListQuery(c echo.Context) (repository.ReportFilter, usecase.ClientFilter, usecase.SortOrder, error) {
	var (
		server repository.ReportFilter
		client usecase.ClientFilter
		fields []string
	)

	if v := strings.ToLower(strings.TrimSpace(c.QueryParam("type"))); v != "" {
		server.Type = entity.ReportType(v)
		if !server.Type.Valid() {
			fields = append(fields, "type")
		}
	}

	if v := strings.ToLower(strings.TrimSpace(c.QueryParam("category"))); v != "" {
		server.Category = entity.Category(v)
		if !server.Category.Valid() {
			fields = append(fields, "category")
		}
	}

	if v := strings.ToLower(strings.TrimSpace(c.QueryParam("status"))); v != "" {
		client.Status = entity.ItemStatus(v)
		if client.Status != usecase.StatusAll && !client.Status.Valid() {
			fields = append(fields, "status")
		}
	}

	for _, v := range splitValues(c.QueryParams()["categories"]) {
		category := entity.Category(strings.ToLower(v))
		if !category.Valid() {
			fields = append(fields, "categories")
			break
		}
		client.Categories = append(client.Categories, category)
	}

	// Location names may contain commas, so only repeated params separate them.
	for _, v := range c.QueryParams()["locations"] {
		if v = strings.TrimSpace(v); v != "" {
			client.Locations = append(client.Locations, v)
		}
	}

	client.SearchText = strings.TrimSpace(c.QueryParam("q"))

	minDays, minErr := parseOptionalDays(c.QueryParam("minDays"))
	if minErr != nil {
		fields = append(fields, "minDays")
	}
	maxDays, maxErr := parseOptionalDays(c.QueryParam("maxDays"))
	if maxErr != nil {
		fields = append(fields, "maxDays")
	}
	if minErr == nil && maxErr == nil && (minDays != nil || maxDays != nil) {
		dayRange := &usecase.DayRange{Min: 0, Max: math.MaxInt}
		if minDays != nil {
			dayRange.Min = *minDays
		}
		if maxDays != nil {
			dayRange.Max = *maxDays
		}
		if dayRange.Min > dayRange.Max {
			fields = append(fields, "maxDays")
		}
		client.DateRange = dayRange
	}

	order, ok := usecase.ParseSortOrder(c.QueryParam("sort"))
	if !ok {
		fields = append(fields, "sort")
	}

	if len(fields) > 0 {
		return server, client, order, errors.Validation("Invalid query parameters: "+strings.Join(fields, ", "), fields)
	}
	return server, client, order, nil
}

func splitValues(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseOptionalDays(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, strconv.ErrRange
	}
	return &days, nil
}

func parseOptionalFloat(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
