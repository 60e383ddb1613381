// Package demo seeds a few accounts and a week of attendance so a fresh
// install has something to show.
package demo

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/homework"
	"github.com/trezcool/shule/core/user"
)

const Password = "shule-demo-2026"

type Services struct {
	UserSvc       user.Service
	AttendanceSvc attendance.Service
	HomeworkSvc   homework.Service
}

type account struct {
	username string
	name     string
	email    string
	role     string
}

var accounts = []account{
	{"student", "Alex Johnson", "student@demo.local", user.RoleStudent},
	{"teacher", "Sarah Williams", "teacher@demo.local", user.RoleTeacher},
	{"parent", "Michael Johnson", "parent@demo.local", user.RoleParent},
}

// Seed creates the demo accounts, links the parent to the student and marks
// roughly a week of attendance. It is safe to run repeatedly; existing data is
// left alone.
func Seed(ctx context.Context, svcs Services, logger core.Logger) error {
	users := make(map[string]user.User, len(accounts))
	for _, acc := range accounts {
		usr, err := svcs.UserSvc.Register(ctx, user.RegisterFields{
			Username: acc.username,
			Name:     acc.name,
			Email:    acc.email,
			Password: Password,
			Role:     acc.role,
		})
		if err != nil {
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				return errors.Wrapf(err, "seeding user %q", acc.username)
			}
			// already seeded
			if usr, err = svcs.UserSvc.GetByUsername(ctx, acc.username); err != nil {
				return errors.Wrapf(err, "getting seeded user %q", acc.username)
			}
		}
		users[acc.role] = usr
	}

	student := users[user.RoleStudent]
	if err := svcs.UserSvc.LinkParent(ctx, users[user.RoleParent].ID, student.ID); err != nil {
		return errors.Wrap(err, "linking demo parent")
	}

	// marks are not deduplicated, so skip dates a previous run already seeded
	records, err := svcs.AttendanceSvc.RecordsByStudent(ctx, student.ID)
	if err != nil {
		return errors.Wrap(err, "getting seeded attendance")
	}
	marked := make(map[string]bool, len(records))
	for _, rec := range records {
		marked[rec.Date] = true
	}

	// today plus the past five school days, with one absence in the mix
	now := core.NowFunc()
	for i := 5; i >= 0; i-- {
		date := core.FormatDate(now.AddDate(0, 0, -i))
		if marked[date] {
			continue
		}
		status := attendance.StatusPresent
		if i == 4 {
			status = attendance.StatusAbsent
		}
		if _, err = svcs.AttendanceSvc.Mark(ctx, student.ID, date, status, attendance.MethodManual); err != nil {
			return errors.Wrapf(err, "seeding attendance for %s", date)
		}
	}

	hws, err := svcs.HomeworkSvc.List(ctx)
	if err != nil {
		return errors.Wrap(err, "listing homework")
	}
	if len(hws) == 0 {
		_, err = svcs.HomeworkSvc.Create(ctx, homework.CreateFields{
			Title:       "Algebra worksheet",
			Description: "Problems 1-20 from chapter 4.",
			Subject:     "Mathematics",
			DueDate:     now.AddDate(0, 0, 3),
			AssignedBy:  users[user.RoleTeacher].ID,
		})
		if err != nil {
			return errors.Wrap(err, "seeding homework")
		}
	}

	logger.Info("demo data seeded")
	return nil
}
