package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/homework"
	"github.com/trezcool/shule/core/user"
)

type homeworkApi struct {
	deps *ServerDeps
}

func registerHomeworkAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := homeworkApi{deps: deps}

	hg := g.Group("/homework", jwt)
	hg.POST("", api.create, roleMiddleware(user.RoleTeacher))
	hg.GET("", api.list)
	hg.GET("/:id", api.retrieve)
	hg.POST("/:id/submit", api.submit, roleMiddleware(user.RoleStudent))
	hg.GET("/:id/submissions", api.submissions, roleMiddleware(user.RoleTeacher))

	sg := g.Group("/submissions", jwt)
	sg.PUT("/:id/grade", api.grade, roleMiddleware(user.RoleTeacher))
}

type (
	CreateHomeworkRequest struct {
		Title       string    `json:"title" validate:"required"`
		Description string    `json:"description"`
		Subject     string    `json:"subject" validate:"required"`
		DueDate     time.Time `json:"due_date" validate:"required"`
	}

	SubmitHomeworkRequest struct {
		Content string `json:"content"`
	}

	GradeRequest struct {
		Grade int `json:"grade" validate:"min=0,max=100"`
	}
)

func (cr *CreateHomeworkRequest) Validate(validate *validator.Validate) error {
	cr.Title = core.CleanString(cr.Title)
	cr.Subject = core.CleanString(cr.Subject)
	return validate.Struct(cr)
}

// Handlers

func (api *homeworkApi) create(ctx echo.Context) error {
	var data CreateHomeworkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CreateHomeworkRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	hw, err := api.deps.HomeworkSvc.Create(ctx.Request().Context(), homework.CreateFields{
		Title:       data.Title,
		Description: data.Description,
		Subject:     data.Subject,
		DueDate:     data.DueDate,
		AssignedBy:  claims.Subject,
	})
	if err != nil {
		return errors.Wrap(err, "creating homework")
	}
	return ctx.JSON(http.StatusCreated, hw)
}

func (api *homeworkApi) list(ctx echo.Context) error {
	hws, err := api.deps.HomeworkSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing homework")
	}
	if hws == nil {
		hws = []homework.Homework{}
	}
	return ctx.JSON(http.StatusOK, hws)
}

func (api *homeworkApi) retrieve(ctx echo.Context) error {
	hw, err := api.deps.HomeworkSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting homework")
	}
	return ctx.JSON(http.StatusOK, hw)
}

func (api *homeworkApi) submit(ctx echo.Context) error {
	var data SubmitHomeworkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitHomeworkRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	res, err := api.deps.HomeworkSvc.Submit(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data.Content)
	if err != nil {
		return errors.Wrap(err, "submitting homework")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *homeworkApi) submissions(ctx echo.Context) error {
	if _, err := api.deps.HomeworkSvc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "getting homework")
	}
	subs, err := api.deps.HomeworkSvc.SubmissionsByHomework(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	if subs == nil {
		subs = []homework.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *homeworkApi) grade(ctx echo.Context) error {
	var data GradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	sub, err := api.deps.HomeworkSvc.Grade(ctx.Request().Context(), ctx.Param("id"), data.Grade)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
