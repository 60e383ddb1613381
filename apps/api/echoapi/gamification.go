package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/gamification"
)

type gamificationApi struct {
	deps *ServerDeps
}

func registerGamificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := gamificationApi{deps: deps}

	gg := g.Group("/gamification", jwt)
	gg.GET("/progress", api.progress)
	gg.GET("/leaderboard", api.leaderboard)

	ag := g.Group("/achievements", jwt)
	ag.GET("", api.achievements)
	ag.GET("/user", api.userAchievements)
}

// Handlers

func (api *gamificationApi) progress(ctx echo.Context) error {
	student, err := resolveStudent(ctx, api.deps, ctx.QueryParam("student_id"))
	if err != nil {
		return err
	}
	game, err := api.deps.GameSvc.Progress(ctx.Request().Context(), student.ID)
	if err != nil {
		return errors.Wrap(err, "getting progress")
	}
	return ctx.JSON(http.StatusOK, game)
}

func (api *gamificationApi) leaderboard(ctx echo.Context) error {
	limit := gamification.DefaultLeaderboardSize
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}
	entries, err := api.deps.GameSvc.Leaderboard(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "getting leaderboard")
	}
	if entries == nil {
		entries = []gamification.LeaderboardEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *gamificationApi) achievements(ctx echo.Context) error {
	achievements, err := api.deps.GameSvc.Achievements(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing achievements")
	}
	if achievements == nil {
		achievements = []gamification.Achievement{}
	}
	return ctx.JSON(http.StatusOK, achievements)
}

func (api *gamificationApi) userAchievements(ctx echo.Context) error {
	student, err := resolveStudent(ctx, api.deps, ctx.QueryParam("student_id"))
	if err != nil {
		return err
	}
	uas, err := api.deps.GameSvc.UserAchievements(ctx.Request().Context(), student.ID)
	if err != nil {
		return errors.Wrap(err, "listing user achievements")
	}
	if uas == nil {
		uas = []gamification.UserAchievement{}
	}
	return ctx.JSON(http.StatusOK, uas)
}
