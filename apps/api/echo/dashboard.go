package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core/dashboard"
)

func registerDashboardAPI(g *echo.Group, agg *dashboard.Aggregator, loc *time.Location) {
	g.GET("/dashboard", func(ctx echo.Context) error {
		asOf, err := queryDay(ctx, "date", loc)
		if err != nil {
			return err
		}
		classIDs, err := queryIDs(ctx, "class_id")
		if err != nil {
			return err
		}
		d, err := agg.Compute(ctx.Request().Context(), dashboard.Scope{ClassIDs: classIDs}, asOf)
		if err != nil {
			return errors.Wrap(err, "computing dashboard")
		}
		return ctx.JSON(http.StatusOK, d)
	})
}
