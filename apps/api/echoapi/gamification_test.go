package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/user"
)

func Test_gamificationApi_progress(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC))
	app := newTestApp(t)
	student := app.register(t, "alex", user.RoleStudent)

	_, err := app.gameSvc.AwardXP(context.Background(), student.ID, 1200)
	require.NoError(t, err)

	rec := app.request(t, http.MethodGet, "/v1/gamification/progress", app.token(t, student), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var game gamification.Gamification
	decode(t, rec, &game)
	assert.Equal(t, 1200, game.XP)
	assert.Equal(t, 2, game.Level)
}

func Test_gamificationApi_leaderboard(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC))
	app := newTestApp(t)
	ctx := context.Background()

	alex := app.register(t, "alex", user.RoleStudent)
	bree := app.register(t, "bree", user.RoleStudent)
	carl := app.register(t, "carl", user.RoleStudent)
	_, err := app.gameSvc.AwardXP(ctx, alex.ID, 300)
	require.NoError(t, err)
	_, err = app.gameSvc.AwardXP(ctx, bree.ID, 700)
	require.NoError(t, err)
	_, err = app.gameSvc.AwardXP(ctx, carl.ID, 500)
	require.NoError(t, err)

	rec := app.request(t, http.MethodGet, "/v1/gamification/leaderboard?limit=2", app.token(t, alex), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entries []gamification.LeaderboardEntry
	decode(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, bree.ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "STU2026003", entries[1].StudentID)
}

func Test_gamificationApi_achievements(t *testing.T) {
	app := newTestApp(t)
	student := app.register(t, "alex", user.RoleStudent)
	token := app.token(t, student)

	rec := app.request(t, http.MethodGet, "/v1/achievements", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var achievements []gamification.Achievement
	decode(t, rec, &achievements)
	require.Len(t, achievements, 3)
	assert.Equal(t, "Streak Master", achievements[1].Name)

	// nothing unlocked yet
	rec = app.request(t, http.MethodGet, "/v1/achievements/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
