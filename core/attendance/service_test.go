package attendance_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (attendance.Service, gamification.Service) {
	t.Helper()
	usrRepo := inmem.NewUserRepository()
	gameSvc := gamification.NewService(inmem.NewGamificationRepository(usrRepo), nil, nopLogger{})
	require.NoError(t, gameSvc.EnsureCatalog(context.Background()))
	svc := attendance.NewService(nil, inmem.NewAttendanceRepository(), gameSvc, nopLogger{})
	return svc, gameSvc
}

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = time.Now })
}

func TestService_Mark(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	freezeTime(t, now)
	ctx := context.Background()

	t.Run("awards check-in XP and starts a streak", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		res, err := svc.Mark(ctx, "stu1", "2026-03-10", attendance.StatusPresent, attendance.MethodManual)
		require.NoError(t, err)
		assert.Equal(t, attendance.XPPerCheckIn, res.XPAwarded)
		assert.Equal(t, 25, res.Progress.XP)
		assert.Equal(t, 1, res.Progress.CurrentStreak)
		assert.Equal(t, 1, res.Progress.TotalDaysAttended)
		require.NotNil(t, res.Record.CheckInTime)
		assert.Equal(t, now, *res.Record.CheckInTime)
	})

	t.Run("absent day earns nothing", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		res, err := svc.Mark(ctx, "stu1", "2026-03-10", attendance.StatusAbsent, attendance.MethodManual)
		require.NoError(t, err)
		assert.Equal(t, 0, res.XPAwarded)
		assert.Equal(t, 0, res.Progress.XP)
		assert.Equal(t, 0, res.Progress.CurrentStreak)
		assert.Equal(t, 0, res.Progress.TotalDaysAttended)
		assert.Nil(t, res.Record.CheckInTime)
	})

	t.Run("duplicate marks are all stored and counted", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		_, err := svc.Mark(ctx, "stu1", "2026-03-10", attendance.StatusPresent, attendance.MethodManual)
		require.NoError(t, err)
		res, err := svc.Mark(ctx, "stu1", "2026-03-10", attendance.StatusPresent, attendance.MethodManual)
		require.NoError(t, err)
		assert.Equal(t, 50, res.Progress.XP)
		assert.Equal(t, 2, res.Progress.TotalDaysAttended)
		// the second same-date record breaks the day-by-day walk after day one
		assert.Equal(t, 1, res.Progress.CurrentStreak)

		recs, err := svc.RecordsByStudent(ctx, "stu1")
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("consecutive days build the streak", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		for _, date := range []string{"2026-03-08", "2026-03-09", "2026-03-10"} {
			_, err := svc.Mark(ctx, "stu1", date, attendance.StatusPresent, attendance.MethodManual)
			require.NoError(t, err)
		}

		game, err := gameSvc.Progress(ctx, "stu1")
		require.NoError(t, err)
		assert.Equal(t, 3, game.CurrentStreak)
		assert.Equal(t, 3, game.LongestStreak)
		assert.Equal(t, 3, game.TotalDaysAttended)
		assert.Equal(t, 75, game.XP)
	})

	t.Run("a gap breaks the streak", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		// 03-07 attended, 03-08 missed, 03-09 and 03-10 attended
		for _, date := range []string{"2026-03-07", "2026-03-09", "2026-03-10"} {
			_, err := svc.Mark(ctx, "stu1", date, attendance.StatusPresent, attendance.MethodManual)
			require.NoError(t, err)
		}

		game, err := gameSvc.Progress(ctx, "stu1")
		require.NoError(t, err)
		assert.Equal(t, 2, game.CurrentStreak)
		assert.Equal(t, 3, game.TotalDaysAttended)
	})

	t.Run("streak is zero when today is unmarked", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		_, err := svc.Mark(ctx, "stu1", "2026-03-08", attendance.StatusPresent, attendance.MethodManual)
		require.NoError(t, err)

		game, err := gameSvc.Progress(ctx, "stu1")
		require.NoError(t, err)
		assert.Equal(t, 0, game.CurrentStreak)
	})

	t.Run("tenth consecutive day unlocks Streak Master", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		for day := 1; day <= 9; day++ {
			date := core.FormatDate(time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC))
			_, err := svc.Mark(ctx, "stu1", date, attendance.StatusPresent, attendance.MethodManual)
			require.NoError(t, err)
		}
		game, err := gameSvc.Progress(ctx, "stu1")
		require.NoError(t, err)
		assert.Equal(t, 9, game.CurrentStreak)
		assert.Equal(t, 225, game.XP)

		// the 10th mark earns 25 check-in XP plus the 1000 XP reward
		res, err := svc.Mark(ctx, "stu1", "2026-03-10", attendance.StatusPresent, attendance.MethodManual)
		require.NoError(t, err)
		assert.Equal(t, 10, res.Progress.CurrentStreak)
		assert.Equal(t, 1250, res.Progress.XP)
		assert.Equal(t, 2, res.Progress.Level)

		uas, err := gameSvc.UserAchievements(ctx, "stu1")
		require.NoError(t, err)
		require.Len(t, uas, 1)
		assert.Equal(t, "2", uas[0].AchievementID) // Streak Master
	})
}

func TestService_QRCheckIn(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	freezeTime(t, now)
	ctx := context.Background()

	t.Run("valid code marks the student present", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		qr, err := svc.GenerateQRCode(ctx, "teach1", "", 0)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(qr.Code, "attendance_"))
		assert.Equal(t, "2026-03-10", qr.Date)
		assert.Equal(t, now.Add(attendance.DefaultQRValidity), qr.ExpiresAt)

		res, err := svc.QRCheckIn(ctx, "stu1", qr.Code)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-10", res.Record.Date)
		assert.Equal(t, attendance.StatusPresent, res.Record.Status)
		assert.Equal(t, attendance.MethodQR, res.Record.Method)
		assert.Equal(t, 25, res.Progress.XP)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.QRCheckIn(ctx, "stu1", "attendance_bogus")
		assert.ErrorIs(t, err, attendance.ErrQRNotFound)
	})

	t.Run("expired code", func(t *testing.T) {
		svc, gameSvc := setup(t)
		require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

		qr, err := svc.GenerateQRCode(ctx, "teach1", "", 10*time.Minute)
		require.NoError(t, err)

		freezeTime(t, now.Add(11*time.Minute))
		_, err = svc.QRCheckIn(ctx, "stu1", qr.Code)
		assert.ErrorIs(t, err, attendance.ErrQRExpired)
	})
}

func TestService_Stats(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC))
	ctx := context.Background()
	svc, gameSvc := setup(t)
	require.NoError(t, gameSvc.InitStudent(ctx, "stu1"))

	marks := map[string]string{
		"2026-03-06": attendance.StatusPresent,
		"2026-03-07": attendance.StatusAbsent,
		"2026-03-08": attendance.StatusAbsent,
		"2026-03-09": attendance.StatusPresent,
		"2026-03-10": attendance.StatusPresent,
	}
	for date, status := range marks {
		_, err := svc.Mark(ctx, "stu1", date, status, attendance.MethodManual)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, "stu1")
	require.NoError(t, err)
	assert.Equal(t, attendance.Stats{
		AttendanceRate: 60,
		Streak:         2, // 03-09 and 03-10
		TotalDays:      3,
		Present:        3,
		Absent:         2,
	}, stats)

	// no records at all
	empty, err := svc.Stats(ctx, "stu2")
	require.NoError(t, err)
	assert.Equal(t, attendance.Stats{}, empty)
}
