package period

import (
	"time"

	"github.com/labstack/echo/v4"
)

// FromQuery reads period, from and to query parameters and resolves the window.
func FromQuery(c echo.Context, def Period, now time.Time) (Period, Window, error) {
	p, err := Parse(c.QueryParam("period"), def)
	if err != nil {
		return "", Window{}, err
	}
	w, err := Resolve(p, now, Range{From: c.QueryParam("from"), To: c.QueryParam("to")})
	if err != nil {
		return "", Window{}, err
	}
	return p, w, nil
}
