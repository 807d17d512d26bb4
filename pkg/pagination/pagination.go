package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500

	TotalCountHeader = "X-Total-Count"
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads limit and offset query parameters, clamping them to sane values.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// FromContextOrAll is FromContext for endpoints that return the whole result
// set unless the caller asks for a page. Limit is 0 when no limit is given.
func FromContextOrAll(c echo.Context) Params {
	if c.QueryParam("limit") == "" {
		offset, _ := strconv.Atoi(c.QueryParam("offset"))
		return Params{Offset: max(offset, 0)}
	}
	return FromContext(c)
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	if p.Limit <= 0 {
		return false
	}
	return p.Offset+p.Limit < total
}

// WriteTotal exposes the unpaginated result count for endpoints that return a
// bare JSON array.
func WriteTotal(c echo.Context, total int) {
	c.Response().Header().Set(TotalCountHeader, strconv.Itoa(total))
}
