package gamification

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// XPPerLevel is the amount of experience needed to advance a level.
	XPPerLevel = 1000

	AchievementTypeAttendance = "attendance"
	AchievementTypeHomework   = "homework"
)

var (
	ErrNotFound            = errors.New("progress not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrAlreadyInitialized  = errors.New("progress already initialized")
)

type (
	// Gamification is a student's progress row. Level is derived from XP and
	// recomputed on every award.
	Gamification struct {
		UserID            string    `json:"user_id" db:"user_id"`
		XP                int       `json:"xp" db:"xp"`
		Level             int       `json:"level" db:"level"`
		CurrentStreak     int       `json:"current_streak" db:"current_streak"`
		LongestStreak     int       `json:"longest_streak" db:"longest_streak"`
		TotalDaysAttended int       `json:"total_days_attended" db:"total_days_attended"`
		UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
	}

	// Condition holds an achievement's unlock thresholds; zero values mean the
	// predicate does not apply.
	Condition struct {
		Streak           int `json:"streak,omitempty"`
		WeeklyAttendance int `json:"weeklyAttendance,omitempty"`
		OnTimeHomework   int `json:"onTimeHomework,omitempty"`
	}

	Achievement struct {
		ID          string    `json:"id" db:"id"`
		Name        string    `json:"name" db:"name"`
		Description string    `json:"description" db:"description"`
		Icon        string    `json:"icon" db:"icon"`
		XPReward    int       `json:"xp_reward" db:"xp_reward"`
		Type        string    `json:"type" db:"type"`
		Condition   Condition `json:"condition" db:"-"`
	}

	UserAchievement struct {
		ID            string    `json:"id" db:"id"`
		UserID        string    `json:"user_id" db:"user_id"`
		AchievementID string    `json:"achievement_id" db:"achievement_id"`
		UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
	}

	// LeaderboardEntry joins a progress row with the owning student's display
	// fields; Rank is filled in by the service.
	LeaderboardEntry struct {
		Gamification

		Rank      int    `json:"rank" db:"-"`
		Name      string `json:"name" db:"name"`
		StudentID string `json:"student_id" db:"student_id"`
	}
)

// LevelForXP derives the level for a given experience total.
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}
