package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/homework"
	"github.com/trezcool/shule/core/user"
)

type dashboardApi struct {
	deps *ServerDeps
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := dashboardApi{deps: deps}

	dg := g.Group("/dashboard", jwt)
	dg.GET("/student", api.student, roleMiddleware(user.RoleStudent))
	dg.GET("/teacher", api.teacher, roleMiddleware(user.RoleTeacher))
	dg.GET("/parent", api.parent, roleMiddleware(user.RoleParent))
}

type (
	StudentDashboard struct {
		Progress      gamification.Gamification      `json:"progress"`
		Stats         attendance.Stats               `json:"stats"`
		RecentRecords []attendance.Record            `json:"recent_records"`
		Achievements  []gamification.UserAchievement `json:"achievements"`
		Homework      []homework.Homework            `json:"homework"`
	}

	// StudentRate is a student flagged on the teacher dashboard for a low
	// attendance rate.
	StudentRate struct {
		Student        user.User `json:"student"`
		AttendanceRate int       `json:"rate"`
	}

	TeacherDashboard struct {
		Date          string              `json:"date"`
		TotalStudents int                 `json:"total_students"`
		PresentToday  int                 `json:"present_today"`
		LowAttendance []StudentRate       `json:"low_attendance"`
		Records       []attendance.Record `json:"records"`
		Homework      []homework.Homework `json:"homework"` // the teacher's own
	}

	ChildOverview struct {
		Student  user.User                 `json:"student"`
		Progress gamification.Gamification `json:"progress"`
		Stats    attendance.Stats          `json:"stats"`
	}

	ParentDashboard struct {
		Children []ChildOverview `json:"children"`
	}
)

const (
	recentRecordsLimit = 7

	// lowAttendanceRate flags students on the teacher dashboard.
	lowAttendanceRate = 70
)

// Handlers

func (api *dashboardApi) student(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	dash := StudentDashboard{
		RecentRecords: []attendance.Record{},
		Achievements:  []gamification.UserAchievement{},
		Homework:      []homework.Homework{},
	}
	if dash.Progress, err = api.deps.GameSvc.Progress(rctx, claims.Subject); err != nil {
		return errors.Wrap(err, "getting progress")
	}
	if dash.Stats, err = api.deps.AttendanceSvc.Stats(rctx, claims.Subject); err != nil {
		return errors.Wrap(err, "getting stats")
	}
	records, err := api.deps.AttendanceSvc.RecordsByStudent(rctx, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting records")
	}
	if len(records) > recentRecordsLimit {
		records = records[:recentRecordsLimit]
	}
	if records != nil {
		dash.RecentRecords = records
	}
	if uas, err := api.deps.GameSvc.UserAchievements(rctx, claims.Subject); err != nil {
		return errors.Wrap(err, "getting achievements")
	} else if uas != nil {
		dash.Achievements = uas
	}
	if hws, err := api.deps.HomeworkSvc.List(rctx); err != nil {
		return errors.Wrap(err, "listing homework")
	} else if hws != nil {
		dash.Homework = hws
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *dashboardApi) teacher(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	date := ctx.QueryParam("date")
	if date == "" {
		date = core.FormatDate(core.NowFunc())
	} else if _, err = core.ParseDate(date); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a valid date in YYYY-MM-DD format"})
	}

	dash := TeacherDashboard{
		Date:          date,
		LowAttendance: []StudentRate{},
		Records:       []attendance.Record{},
		Homework:      []homework.Homework{},
	}
	if records, err := api.deps.AttendanceSvc.RecordsByDate(rctx, date); err != nil {
		return errors.Wrap(err, "getting records by date")
	} else if records != nil {
		dash.Records = records
		for i := range records {
			if records[i].IsPresent() {
				dash.PresentToday++
			}
		}
	}

	students, err := api.deps.UserSvc.Students(rctx)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	dash.TotalStudents = len(students)
	for _, student := range students {
		stats, err := api.deps.AttendanceSvc.Stats(rctx, student.ID)
		if err != nil {
			return errors.Wrapf(err, "getting stats for student %s", student.ID)
		}
		if stats.AttendanceRate < lowAttendanceRate {
			dash.LowAttendance = append(dash.LowAttendance, StudentRate{Student: student, AttendanceRate: stats.AttendanceRate})
		}
	}

	if hws, err := api.deps.HomeworkSvc.ListByTeacher(rctx, claims.Subject); err != nil {
		return errors.Wrap(err, "listing homework")
	} else if hws != nil {
		dash.Homework = hws
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *dashboardApi) parent(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	children, err := api.deps.UserSvc.Children(rctx, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting children")
	}

	dash := ParentDashboard{Children: make([]ChildOverview, 0, len(children))}
	for _, child := range children {
		overview := ChildOverview{Student: child}
		if overview.Progress, err = api.deps.GameSvc.Progress(rctx, child.ID); err != nil {
			return errors.Wrap(err, "getting child progress")
		}
		if overview.Stats, err = api.deps.AttendanceSvc.Stats(rctx, child.ID); err != nil {
			return errors.Wrap(err, "getting child stats")
		}
		dash.Children = append(dash.Children, overview)
	}
	return ctx.JSON(http.StatusOK, dash)
}
