package gamification

// DefaultAchievements is the built-in achievement catalog, seeded into the
// store at startup if missing.
var DefaultAchievements = []Achievement{
	{
		ID:          "1",
		Name:        "Perfect Week",
		Description: "Attend school every day for a week",
		Icon:        "🏆",
		XPReward:    500,
		Type:        AchievementTypeAttendance,
		Condition:   Condition{WeeklyAttendance: 7},
	},
	{
		ID:          "2",
		Name:        "Streak Master",
		Description: "Maintain a 10-day attendance streak",
		Icon:        "🔥",
		XPReward:    1000,
		Type:        AchievementTypeAttendance,
		Condition:   Condition{Streak: 10},
	},
	{
		ID:          "3",
		Name:        "Study Champion",
		Description: "Submit 10 homework assignments on time",
		Icon:        "📚",
		XPReward:    750,
		Type:        AchievementTypeHomework,
		Condition:   Condition{OnTimeHomework: 10},
	},
}
