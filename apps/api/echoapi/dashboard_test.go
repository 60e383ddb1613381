package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/homework"
	"github.com/trezcool/shule/core/user"
)

func Test_dashboardApi(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC))
	app := newTestApp(t)
	ctx := context.Background()

	student := app.register(t, "alex", user.RoleStudent)
	truant := app.register(t, "bree", user.RoleStudent)
	teacher := app.register(t, "sarah", user.RoleTeacher)
	other := app.register(t, "tina", user.RoleTeacher)
	parent := app.register(t, "michael", user.RoleParent)
	require.NoError(t, app.usrSvc.LinkParent(ctx, parent.ID, student.ID))

	for _, date := range []string{"2026-03-09", "2026-03-10"} {
		_, err := app.attSvc.Mark(ctx, student.ID, date, attendance.StatusPresent, attendance.MethodManual)
		require.NoError(t, err)
	}
	_, err := app.attSvc.Mark(ctx, truant.ID, "2026-03-10", attendance.StatusAbsent, attendance.MethodTeacherOverride)
	require.NoError(t, err)

	due := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	_, err = app.hwSvc.Create(ctx, homework.CreateFields{Title: "Essay", Subject: "English", DueDate: due, AssignedBy: teacher.ID})
	require.NoError(t, err)
	_, err = app.hwSvc.Create(ctx, homework.CreateFields{Title: "Quiz", Subject: "History", DueDate: due, AssignedBy: other.ID})
	require.NoError(t, err)

	t.Run("student dashboard", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard/student", app.token(t, student), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var dash StudentDashboard
		decode(t, rec, &dash)
		assert.Equal(t, 2, dash.Progress.CurrentStreak)
		assert.Equal(t, 50, dash.Progress.XP)
		assert.Equal(t, 2, dash.Stats.Present)
		assert.Equal(t, 2, dash.Stats.TotalDays)
		assert.Len(t, dash.RecentRecords, 2)
	})

	t.Run("teacher dashboard defaults to today", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard/teacher", app.token(t, teacher), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var dash TeacherDashboard
		decode(t, rec, &dash)
		assert.Equal(t, "2026-03-10", dash.Date)
		assert.Equal(t, 2, dash.TotalStudents)
		assert.Equal(t, 1, dash.PresentToday)
		assert.Len(t, dash.Records, 2)

		// bree has a single absent record, a 0% rate
		require.Len(t, dash.LowAttendance, 1)
		assert.Equal(t, truant.ID, dash.LowAttendance[0].Student.ID)
		assert.Equal(t, 0, dash.LowAttendance[0].AttendanceRate)

		// only sarah's own homework shows up
		require.Len(t, dash.Homework, 1)
		assert.Equal(t, "Essay", dash.Homework[0].Title)
	})

	t.Run("parent dashboard lists children", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard/parent", app.token(t, parent), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var dash ParentDashboard
		decode(t, rec, &dash)
		require.Len(t, dash.Children, 1)
		assert.Equal(t, student.ID, dash.Children[0].Student.ID)
		assert.Equal(t, 2, dash.Children[0].Stats.Present)
	})

	t.Run("roles are enforced", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard/teacher", app.token(t, student), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
