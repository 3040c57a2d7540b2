package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
)

const (
	orderingParam = "ordering"
	dateLayout    = "2006-01-02"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// pathID reads an integer path param. Malformed ids can match nothing, so they are reported as not found.
func pathID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryIDs reads every value of an integer query param, e.g. ?class_id=1&class_id=2.
func queryIDs(ctx echo.Context, name string) ([]int64, error) {
	vals := ctx.QueryParams()[name]
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be a list of integers"})
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func queryInt(ctx echo.Context, name string, def int) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be an integer"})
	}
	return n, nil
}

// queryDay reads a YYYY-MM-DD query param as midnight in loc, defaulting to now.
func queryDay(ctx echo.Context, name string, loc *time.Location) (time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Now().In(loc), nil
	}
	day, err := time.ParseInLocation(dateLayout, val, loc)
	if err != nil {
		return time.Time{}, core.NewValidationError(errors.Errorf("%s must be formatted as YYYY-MM-DD", name))
	}
	return day, nil
}
