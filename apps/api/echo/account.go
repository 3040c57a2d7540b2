package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/account"
)

type accountApi struct {
	svc *account.Service
}

func registerAccountAPI(g *echo.Group, svc *account.Service) {
	api := accountApi{svc: svc}

	g.POST("/accounts/register", api.register)
	g.GET("/parents/:id/report", api.report)
}

// Handlers

func (api *accountApi) register(ctx echo.Context) error {
	var data account.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	res, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering account")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *accountApi) report(ctx echo.Context) error {
	var childID *int64
	if v := ctx.QueryParam("child_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: "must be an integer"})
		}
		childID = &id
	}
	report, err := api.svc.Report(ctx.Request().Context(), ctx.Param("id"), childID)
	if err != nil {
		return errors.Wrap(err, "building parent report")
	}
	return ctx.JSON(http.StatusOK, report)
}
