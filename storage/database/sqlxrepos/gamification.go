package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/gamification"
)

type gamificationRepo struct {
	db core.DB
}

var _ gamification.Repository = (*gamificationRepo)(nil)

func NewGamificationRepository(db core.DB) gamification.Repository {
	return &gamificationRepo{db: db}
}

func (repo *gamificationRepo) CreateGamification(ctx context.Context, game *gamification.Gamification, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO gamification (user_id, xp, level, current_streak, longest_streak, total_days_attended, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		game.UserID, game.XP, game.Level, game.CurrentStreak, game.LongestStreak, game.TotalDaysAttended, game.UpdatedAt,
	)
	return err
}

func (repo *gamificationRepo) GetGamification(ctx context.Context, userID string, exec ...core.DBExecutor) (gamification.Gamification, error) {
	var game gamification.Gamification
	err := executor(repo.db, exec...).GetContext(ctx, &game, `SELECT * FROM gamification WHERE user_id = $1`, userID)
	return game, trapNoRowsErr(err, gamification.ErrNotFound)
}

func (repo *gamificationRepo) UpdateGamification(ctx context.Context, game *gamification.Gamification, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		UPDATE gamification
		SET xp = $2, level = $3, current_streak = $4, longest_streak = $5, total_days_attended = $6, updated_at = $7
		WHERE user_id = $1`,
		game.UserID, game.XP, game.Level, game.CurrentStreak, game.LongestStreak, game.TotalDaysAttended, game.UpdatedAt,
	)
	return err
}

// achievementRow maps the achievements table; condition is stored as jsonb.
type achievementRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Icon        string `db:"icon"`
	XPReward    int    `db:"xp_reward"`
	Type        string `db:"type"`
	Condition   []byte `db:"condition"`
}

func (row achievementRow) toModel() (gamification.Achievement, error) {
	ach := gamification.Achievement{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Icon:        row.Icon,
		XPReward:    row.XPReward,
		Type:        row.Type,
	}
	if len(row.Condition) > 0 {
		if err := json.Unmarshal(row.Condition, &ach.Condition); err != nil {
			return ach, errors.Wrap(err, "unmarshalling achievement condition")
		}
	}
	return ach, nil
}

func (repo *gamificationRepo) GetAchievements(ctx context.Context, exec ...core.DBExecutor) ([]gamification.Achievement, error) {
	var rows []achievementRow
	if err := executor(repo.db, exec...).SelectContext(ctx, &rows, `SELECT * FROM achievements ORDER BY id`); err != nil {
		return nil, err
	}
	achievements := make([]gamification.Achievement, len(rows))
	for i, row := range rows {
		ach, err := row.toModel()
		if err != nil {
			return nil, err
		}
		achievements[i] = ach
	}
	return achievements, nil
}

func (repo *gamificationRepo) GetAchievement(ctx context.Context, id string, exec ...core.DBExecutor) (gamification.Achievement, error) {
	var row achievementRow
	if err := executor(repo.db, exec...).GetContext(ctx, &row, `SELECT * FROM achievements WHERE id = $1`, id); err != nil {
		return gamification.Achievement{}, trapNoRowsErr(err, gamification.ErrAchievementNotFound)
	}
	return row.toModel()
}

func (repo *gamificationRepo) CreateAchievement(ctx context.Context, ach *gamification.Achievement, exec ...core.DBExecutor) error {
	condition, err := json.Marshal(ach.Condition)
	if err != nil {
		return errors.Wrap(err, "marshalling achievement condition")
	}
	_, err = executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO achievements (id, name, description, icon, xp_reward, type, condition)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ach.ID, ach.Name, ach.Description, ach.Icon, ach.XPReward, ach.Type, condition,
	)
	return err
}

func (repo *gamificationRepo) GetUserAchievements(ctx context.Context, userID string, exec ...core.DBExecutor) ([]gamification.UserAchievement, error) {
	var uas []gamification.UserAchievement
	err := executor(repo.db, exec...).SelectContext(ctx, &uas, `
		SELECT * FROM user_achievements WHERE user_id = $1 ORDER BY unlocked_at`,
		userID,
	)
	return uas, err
}

func (repo *gamificationRepo) HasUserAchievement(ctx context.Context, userID, achievementID string, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	err := executor(repo.db, exec...).GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM user_achievements WHERE user_id = $1 AND achievement_id = $2)`,
		userID, achievementID,
	)
	return exists, err
}

func (repo *gamificationRepo) CreateUserAchievement(ctx context.Context, ua *gamification.UserAchievement, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3, $4)`,
		ua.ID, ua.UserID, ua.AchievementID, ua.UnlockedAt,
	)
	return err
}

type leaderboardRow struct {
	UserID            string    `db:"user_id"`
	XP                int       `db:"xp"`
	Level             int       `db:"level"`
	CurrentStreak     int       `db:"current_streak"`
	LongestStreak     int       `db:"longest_streak"`
	TotalDaysAttended int       `db:"total_days_attended"`
	UpdatedAt         time.Time `db:"updated_at"`
	Name              string    `db:"name"`
	StudentID         string    `db:"student_id"`
}

func (repo *gamificationRepo) GetLeaderboard(ctx context.Context, limit int, exec ...core.DBExecutor) ([]gamification.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := executor(repo.db, exec...).SelectContext(ctx, &rows, `
		SELECT g.*, u.name, u.student_id
		FROM gamification g
		JOIN users u ON u.id = g.user_id
		WHERE u.is_active
		ORDER BY g.xp DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	entries := make([]gamification.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = gamification.LeaderboardEntry{
			Gamification: gamification.Gamification{
				UserID:            row.UserID,
				XP:                row.XP,
				Level:             row.Level,
				CurrentStreak:     row.CurrentStreak,
				LongestStreak:     row.LongestStreak,
				TotalDaysAttended: row.TotalDaysAttended,
				UpdatedAt:         row.UpdatedAt,
			},
			Name:      row.Name,
			StudentID: row.StudentID,
		}
	}
	return entries, nil
}
