package utils

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams extracts opt-in pagination from the request. ok is false
// when neither page nor limit was supplied, in which case callers return the
// full result set.
func GetPaginationParams(c echo.Context) (params PaginationParams, ok bool) {
	pageStr := c.QueryParam("page")
	limitStr := c.QueryParam("limit")
	if pageStr == "" && limitStr == "" {
		return PaginationParams{}, false
	}

	page, _ := strconv.Atoi(pageStr)
	pageSize, _ := strconv.Atoi(limitStr)

	if page <= 0 {
		page = 1
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20 // Default page size
	}

	offset := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		offset = (page - 1) * pageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   offset,
	}, true
}

// Bounds returns the [start, end) slice bounds of this page within total items.
func (p PaginationParams) Bounds(total int) (int, int) {
	start := p.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if p.PageSize > 0 && p.PageSize < total-start {
		end = start + p.PageSize
	}
	return start, end
}
