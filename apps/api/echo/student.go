package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/recommend"
	"github.com/mathsol/academy/core/student"
	exportsvc "github.com/mathsol/academy/services/export"
)

type studentApi struct {
	svc      *student.Service
	evals    *evaluation.Service
	engine   *recommend.Engine
	catalog  *curriculum.Service
	exporter *exportsvc.Service
}

func registerStudentAPI(g *echo.Group, deps Deps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		evals:    deps.EvaluationSvc,
		engine:   deps.Engine,
		catalog:  deps.CurriculumSvc,
		exporter: deps.Exporter,
	}

	sg := g.Group("/students")
	sg.POST("", api.create)
	sg.GET("", api.query)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/recommendation", api.recommend)
	dg.GET("/evaluation-form", api.evaluationForm)
	dg.POST("/evaluations", api.evaluate)
	dg.GET("/evaluations", api.history)
	dg.GET("/evaluations/export", api.export)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	st, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := &student.QueryFilter{Search: ctx.QueryParam("search")}
	if v := ctx.QueryParam("class_id"); v != "" {
		classID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return ctx.JSON(http.StatusOK, []student.Student{})
		}
		filter.ClassID = &classID
	}
	if v := ctx.QueryParam("unassigned"); v != "" {
		filter.Unassigned, _ = strconv.ParseBool(v)
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	st, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) recommend(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	rec, err := api.engine.Recommend(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "recommending units")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *studentApi) evaluationForm(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	form, err := api.engine.Prepare(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "preparing evaluation form")
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *studentApi) evaluate(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data evaluation.NewLog
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLog")
	}
	data.StudentID = id

	l, err := api.evals.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting evaluation")
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *studentApi) history(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	limit, err := queryInt(ctx, "limit", 0)
	if err != nil {
		return err
	}
	logs, err := api.evals.History(ctx.Request().Context(), id, limit)
	if err != nil {
		return errors.Wrap(err, "querying history")
	}
	return ctx.JSON(http.StatusOK, logs)
}

func (api *studentApi) export(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	st, err := api.svc.GetByID(rctx, id)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	logs, err := api.evals.History(rctx, id, 0)
	if err != nil {
		return errors.Wrap(err, "querying history")
	}
	cat, err := api.catalog.Catalog(rctx)
	if err != nil {
		return errors.Wrap(err, "loading catalog")
	}

	buf, filename, err := api.exporter.StudentLogs(st, logs, cat)
	if err != nil {
		return errors.Wrap(err, "exporting logs")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}
