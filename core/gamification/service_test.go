package gamification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (gamification.Service, gamification.Repository, user.Repository) {
	t.Helper()
	usrRepo := inmem.NewUserRepository()
	repo := inmem.NewGamificationRepository(usrRepo)
	svc := gamification.NewService(repo, nil, nopLogger{})
	require.NoError(t, svc.EnsureCatalog(context.Background()))
	return svc, repo, usrRepo
}

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = time.Now })
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{999, 1},
		{1000, 2},
		{1025, 2},
		{2000, 3},
		{10500, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gamification.LevelForXP(tt.xp))
	}
}

func TestService_InitStudent(t *testing.T) {
	svc, _, _ := setup(t)
	freezeTime(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, svc.InitStudent(ctx, "stu1"))

	game, err := svc.Progress(ctx, "stu1")
	require.NoError(t, err)
	assert.Equal(t, 0, game.XP)
	assert.Equal(t, 1, game.Level)
	assert.Equal(t, 0, game.CurrentStreak)

	// a second init must fail, the row already exists
	assert.Error(t, svc.InitStudent(ctx, "stu1"))
}

func TestService_EnsureCatalog(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	// setup already seeded; a second run must not duplicate
	require.NoError(t, svc.EnsureCatalog(ctx))

	achievements, err := svc.Achievements(ctx)
	require.NoError(t, err)
	require.Len(t, achievements, 3)
	assert.Equal(t, "Perfect Week", achievements[0].Name)
	assert.Equal(t, "Streak Master", achievements[1].Name)
	assert.Equal(t, 10, achievements[1].Condition.Streak)
	assert.Equal(t, "Study Champion", achievements[2].Name)
}

func TestService_AwardXP(t *testing.T) {
	svc, _, _ := setup(t)
	freezeTime(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()
	require.NoError(t, svc.InitStudent(ctx, "stu1"))

	game, err := svc.AwardXP(ctx, "stu1", 950)
	require.NoError(t, err)
	assert.Equal(t, 950, game.XP)
	assert.Equal(t, 1, game.Level)

	// crossing the threshold levels up
	game, err = svc.AwardXP(ctx, "stu1", 100)
	require.NoError(t, err)
	assert.Equal(t, 1050, game.XP)
	assert.Equal(t, 2, game.Level)

	_, err = svc.AwardXP(ctx, "missing", 25)
	assert.ErrorIs(t, err, gamification.ErrNotFound)
}

func TestService_ApplyStreak(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	t.Run("below the unlock gate nothing fires", func(t *testing.T) {
		svc, _, _ := setup(t)
		require.NoError(t, svc.InitStudent(ctx, "stu1"))

		game, err := svc.ApplyStreak(ctx, "stu1", 9, 9, 9)
		require.NoError(t, err)
		assert.Equal(t, 9, game.CurrentStreak)
		assert.Equal(t, 9, game.LongestStreak)
		assert.Equal(t, 0, game.XP)

		uas, err := svc.UserAchievements(ctx, "stu1")
		require.NoError(t, err)
		assert.Empty(t, uas)
	})

	t.Run("streak of 10 unlocks Streak Master once", func(t *testing.T) {
		svc, _, _ := setup(t)
		require.NoError(t, svc.InitStudent(ctx, "stu1"))

		game, err := svc.ApplyStreak(ctx, "stu1", 10, 10, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, game.CurrentStreak)
		assert.Equal(t, 1000, game.XP) // Streak Master reward
		assert.Equal(t, 2, game.Level)

		uas, err := svc.UserAchievements(ctx, "stu1")
		require.NoError(t, err)
		require.Len(t, uas, 1)
		assert.Equal(t, "2", uas[0].AchievementID)

		// day 20 hits the gate again but the achievement stays unlocked once
		game, err = svc.ApplyStreak(ctx, "stu1", 20, 20, 20)
		require.NoError(t, err)
		assert.Equal(t, 1000, game.XP)

		uas, err = svc.UserAchievements(ctx, "stu1")
		require.NoError(t, err)
		assert.Len(t, uas, 1)
	})

	t.Run("streak of 11 misses the gate", func(t *testing.T) {
		svc, _, _ := setup(t)
		require.NoError(t, svc.InitStudent(ctx, "stu1"))

		game, err := svc.ApplyStreak(ctx, "stu1", 11, 11, 11)
		require.NoError(t, err)
		assert.Equal(t, 0, game.XP)

		uas, err := svc.UserAchievements(ctx, "stu1")
		require.NoError(t, err)
		assert.Empty(t, uas)
	})

	t.Run("longest streak never shrinks", func(t *testing.T) {
		svc, _, _ := setup(t)
		require.NoError(t, svc.InitStudent(ctx, "stu1"))

		_, err := svc.ApplyStreak(ctx, "stu1", 5, 5, 5)
		require.NoError(t, err)
		game, err := svc.ApplyStreak(ctx, "stu1", 1, 1, 6)
		require.NoError(t, err)
		assert.Equal(t, 1, game.CurrentStreak)
		assert.Equal(t, 5, game.LongestStreak)
	})
}

func TestService_Leaderboard(t *testing.T) {
	svc, _, usrRepo := setup(t)
	freezeTime(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	newStudent := func(id, name, studentID string, xp int) {
		usr := user.User{ID: id, Username: id, Name: name, Email: id + "@test.cd", Role: user.RoleStudent, StudentID: studentID, IsActive: true}
		require.NoError(t, usrRepo.CreateUser(ctx, &usr))
		require.NoError(t, svc.InitStudent(ctx, id))
		if xp > 0 {
			_, err := svc.AwardXP(ctx, id, xp)
			require.NoError(t, err)
		}
	}
	newStudent("a", "Alice", "STU2026001", 300)
	newStudent("b", "Bob", "STU2026002", 700)
	newStudent("c", "Carl", "STU2026003", 500)

	entries, err := svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Bob", entries[0].Name)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 700, entries[0].XP)
	assert.Equal(t, "Carl", entries[1].Name)
	assert.Equal(t, 2, entries[1].Rank)
}
