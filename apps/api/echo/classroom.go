package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core/classroom"
)

type classApi struct {
	svc *classroom.Service
	loc *time.Location
}

func registerClassAPI(g *echo.Group, svc *classroom.Service, loc *time.Location) {
	api := classApi{svc: svc, loc: loc}

	cg := g.Group("/classes")
	cg.POST("", api.create)
	cg.GET("", api.list)

	dg := cg.Group("/:id")
	dg.POST("/assign", api.assign)
	dg.GET("/students", api.roster)
	dg.GET("/available", api.available)
}

// Handlers

func (api *classApi) create(ctx echo.Context) error {
	var data classroom.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classApi) list(ctx echo.Context) error {
	classes, err := api.svc.List(ctx.Request().Context(), time.Now())
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) assign(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data classroom.AssignStudents
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignStudents")
	}
	res, err := api.svc.Assign(ctx.Request().Context(), id, data.StudentIDs)
	if err != nil {
		return errors.Wrap(err, "assigning students")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *classApi) roster(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	day, err := queryDay(ctx, "date", api.loc)
	if err != nil {
		return err
	}
	roster, err := api.svc.Roster(ctx.Request().Context(), id, day)
	if err != nil {
		return errors.Wrap(err, "building roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *classApi) available(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	targetGrade := ctx.QueryParam("target_grade")
	if targetGrade == "" {
		c, err := api.svc.GetByID(rctx, id)
		if err != nil {
			return errors.Wrap(err, "finding class")
		}
		targetGrade = c.TargetGrade
	}
	students, err := api.svc.Available(rctx, targetGrade)
	if err != nil {
		return errors.Wrap(err, "querying available students")
	}
	return ctx.JSON(http.StatusOK, students)
}
