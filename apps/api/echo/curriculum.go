package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core/curriculum"
)

func registerCurriculumAPI(g *echo.Group, svc *curriculum.Service) {
	g.GET("/curriculum", func(ctx echo.Context) error {
		cat, err := svc.Catalog(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "loading catalog")
		}
		if cat == nil {
			cat = curriculum.Catalog{}
		}
		return ctx.JSON(http.StatusOK, cat)
	})
}
