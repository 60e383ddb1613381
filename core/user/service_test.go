package user_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	"github.com/trezcool/shule/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (user.Service, gamification.Service) {
	t.Helper()
	if core.Conf == nil {
		core.NewConfig()
	}
	usrRepo := inmem.NewUserRepository()
	gameSvc := gamification.NewService(inmem.NewGamificationRepository(usrRepo), nil, nopLogger{})
	svc := user.NewService(nil, usrRepo, gameSvc, emailsvc.NewConsoleService(io.Discard), nopLogger{})
	return svc, gameSvc
}

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = time.Now })
}

func register(t *testing.T, svc user.Service, uname, email, role string) user.User {
	t.Helper()
	usr, err := svc.Register(context.Background(), user.RegisterFields{
		Username: uname,
		Name:     "Test " + uname,
		Email:    email,
		Password: "s3cur3-p@ssw0rd!",
		Role:     role,
	})
	require.NoError(t, err)
	return usr
}

func TestService_Register(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	t.Run("student gets a number and a progress row", func(t *testing.T) {
		svc, gameSvc := setup(t)

		usr := register(t, svc, "alex", "alex@test.cd", user.RoleStudent)
		assert.Equal(t, "STU2026001", usr.StudentID)
		assert.True(t, usr.IsActive)
		assert.NotEmpty(t, usr.ID)

		game, err := gameSvc.Progress(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, game.Level)
		assert.Equal(t, 0, game.XP)

		// numbers increment with the student count
		usr2 := register(t, svc, "bree", "bree@test.cd", user.RoleStudent)
		assert.Equal(t, "STU2026002", usr2.StudentID)
	})

	t.Run("teachers get no student number nor progress row", func(t *testing.T) {
		svc, gameSvc := setup(t)

		usr := register(t, svc, "sarah", "sarah@test.cd", user.RoleTeacher)
		assert.Empty(t, usr.StudentID)

		_, err := gameSvc.Progress(ctx, usr.ID)
		assert.ErrorIs(t, err, gamification.ErrNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _ := setup(t)
		register(t, svc, "alex", "alex@test.cd", user.RoleStudent)

		_, err := svc.Register(ctx, user.RegisterFields{
			Username: "Alex ", // cleaned before the check
			Name:     "Other Alex",
			Email:    "other@test.cd",
			Password: "s3cur3-p@ssw0rd!",
			Role:     user.RoleStudent,
		})
		assert.ErrorIs(t, err, user.ErrUsernameExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _ := setup(t)
		register(t, svc, "alex", "alex@test.cd", user.RoleStudent)

		_, err := svc.Register(ctx, user.RegisterFields{
			Username: "other",
			Name:     "Other",
			Email:    "ALEX@test.cd",
			Password: "s3cur3-p@ssw0rd!",
			Role:     user.RoleStudent,
		})
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})

	t.Run("weak passwords are rejected", func(t *testing.T) {
		svc, _ := setup(t)
		tests := []struct {
			name string
			pwd  string
		}{
			{"too short", "abc1"},
			{"too common", "password1"},
			{"similar to username", "alexander1"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Register(ctx, user.RegisterFields{
					Username: "alexander1",
					Name:     "Alex",
					Email:    "alex@test.cd",
					Password: tt.pwd,
					Role:     user.RoleStudent,
				})
				var vErr *core.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.NotEmpty(t, vErr.Fields)
			})
		}
	})
}

func TestService_Authenticate(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()
	svc, _ := setup(t)
	usr := register(t, svc, "alex", "alex@test.cd", user.RoleStudent)

	t.Run("ok", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "Alex ", "s3cur3-p@ssw0rd!")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alex", "nope-nope")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost", "whatever1")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		svc, _ := setup(t)
		usr := register(t, svc, "naughty", "naughty@test.cd", user.RoleStudent)
		usr.IsActive = false
		require.NoError(t, svc.SetPassword(ctx, &usr, "an0ther-p@ss!"))

		_, err := svc.Authenticate(ctx, "naughty", "an0ther-p@ss!")
		assert.ErrorIs(t, err, user.ErrUserInactive)
	})
}

func TestService_ChangePassword(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()
	svc, _ := setup(t)
	usr := register(t, svc, "alex", "alex@test.cd", user.RoleStudent)

	err := svc.ChangePassword(ctx, &usr, "wrong-old", "new-p@ssw0rd!")
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	require.NoError(t, svc.ChangePassword(ctx, &usr, "s3cur3-p@ssw0rd!", "new-p@ssw0rd!"))

	_, err = svc.Authenticate(ctx, "alex", "new-p@ssw0rd!")
	assert.NoError(t, err)
}

func TestService_LinkParent(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()
	svc, _ := setup(t)

	student := register(t, svc, "alex", "alex@test.cd", user.RoleStudent)
	parent := register(t, svc, "michael", "michael@test.cd", user.RoleParent)
	teacher := register(t, svc, "sarah", "sarah@test.cd", user.RoleTeacher)

	require.NoError(t, svc.LinkParent(ctx, parent.ID, student.ID))

	children, err := svc.Children(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, student.ID, children[0].ID)

	// role mix-ups are rejected
	var vErr *core.ValidationError
	assert.ErrorAs(t, svc.LinkParent(ctx, teacher.ID, student.ID), &vErr)
	assert.ErrorAs(t, svc.LinkParent(ctx, parent.ID, teacher.ID), &vErr)
}
