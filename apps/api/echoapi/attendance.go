package echoapi

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/user"
)

type attendanceApi struct {
	deps *ServerDeps
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := attendanceApi{deps: deps}

	ag := g.Group("/attendance", jwt)
	ag.POST("/mark", api.mark)
	ag.POST("/qr-checkin", api.qrCheckIn, roleMiddleware(user.RoleStudent))
	ag.GET("/stats", api.stats)
	ag.GET("/records", api.records)

	qg := g.Group("/qr", jwt)
	qg.POST("/generate", api.generateQR, roleMiddleware(user.RoleTeacher))
}

type (
	MarkRequest struct {
		StudentID string `json:"student_id"` // teachers only; students mark themselves
		Date      string `json:"date" validate:"omitempty,calendardate"`
		Status    string `json:"status" validate:"omitempty,oneof=present absent"`
	}

	QRCheckInRequest struct {
		Code string `json:"code" validate:"required"`
	}

	GenerateQRRequest struct {
		Date         string `json:"date" validate:"omitempty,calendardate"`
		ValidMinutes int    `json:"valid_minutes" validate:"omitempty,min=1,max=1440"`
	}

	QRCodeResponse struct {
		Code      string    `json:"code"`
		Date      string    `json:"date"`
		ExpiresAt time.Time `json:"expires_at"`
		PNG       string    `json:"png"` // base64-encoded image
	}
)

func (mr *MarkRequest) Validate(validate *validator.Validate) error {
	mr.Date = core.CleanString(mr.Date)
	mr.Status = core.CleanString(mr.Status, true /* lower */)
	return validate.Struct(mr)
}

// Handlers

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data MarkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	if data.Date == "" {
		data.Date = core.FormatDate(core.NowFunc())
	}
	if data.Status == "" {
		data.Status = attendance.StatusPresent
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	studentID := data.StudentID
	method := attendance.MethodManual
	switch {
	case ctxUsr.IsStudent():
		// students can only mark themselves present for today
		if studentID != "" && studentID != ctxUsr.ID {
			return errHttpForbidden
		}
		studentID = ctxUsr.ID
		data.Date = core.FormatDate(core.NowFunc())
		data.Status = attendance.StatusPresent
	case ctxUsr.IsTeacher():
		if studentID == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "student_id is required"})
		}
		student, err := api.deps.UserSvc.GetByID(ctx.Request().Context(), studentID)
		if err != nil || !student.IsStudent() {
			return errHttpNotFound
		}
		method = attendance.MethodTeacherOverride
	default:
		return errHttpForbidden
	}

	res, err := api.deps.AttendanceSvc.Mark(ctx.Request().Context(), studentID, data.Date, data.Status, method)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *attendanceApi) qrCheckIn(ctx echo.Context) error {
	var data QRCheckInRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QRCheckInRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	res, err := api.deps.AttendanceSvc.QRCheckIn(ctx.Request().Context(), claims.Subject, core.CleanString(data.Code))
	if err != nil {
		return errors.Wrap(err, "checking in")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *attendanceApi) generateQR(ctx echo.Context) error {
	var data GenerateQRRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateQRRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	qr, err := api.deps.AttendanceSvc.GenerateQRCode(
		ctx.Request().Context(), claims.Subject, data.Date, time.Duration(data.ValidMinutes)*time.Minute)
	if err != nil {
		return errors.Wrap(err, "generating qr code")
	}
	png, err := qr.PNG(256)
	if err != nil {
		return errors.Wrap(err, "rendering qr code")
	}
	return ctx.JSON(http.StatusCreated, QRCodeResponse{
		Code:      qr.Code,
		Date:      qr.Date,
		ExpiresAt: qr.ExpiresAt,
		PNG:       base64.StdEncoding.EncodeToString(png),
	})
}

func (api *attendanceApi) stats(ctx echo.Context) error {
	student, err := resolveStudent(ctx, api.deps, ctx.QueryParam("student_id"))
	if err != nil {
		return err
	}
	stats, err := api.deps.AttendanceSvc.Stats(ctx.Request().Context(), student.ID)
	if err != nil {
		return errors.Wrap(err, "getting stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) records(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// teachers can list a whole day
	if date := ctx.QueryParam("date"); date != "" && ctxUsr.IsTeacher() {
		if _, err = core.ParseDate(date); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a valid date in YYYY-MM-DD format"})
		}
		recs, err := api.deps.AttendanceSvc.RecordsByDate(ctx.Request().Context(), date)
		if err != nil {
			return errors.Wrap(err, "getting records by date")
		}
		if recs == nil {
			recs = []attendance.Record{}
		}
		return ctx.JSON(http.StatusOK, recs)
	}

	student, err := resolveStudent(ctx, api.deps, ctx.QueryParam("student_id"))
	if err != nil {
		return err
	}
	recs, err := api.deps.AttendanceSvc.RecordsByStudent(ctx.Request().Context(), student.ID)
	if err != nil {
		return errors.Wrap(err, "getting records")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}
