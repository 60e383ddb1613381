package user

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr *User, exec ...core.DBExecutor) error
		GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (User, error)
		GetUserByUsername(ctx context.Context, uname string, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error)
		GetStudents(ctx context.Context, exec ...core.DBExecutor) ([]User, error)
		UpdateUser(ctx context.Context, usr *User, exec ...core.DBExecutor) error
		LinkParent(ctx context.Context, parentID, studentID string, exec ...core.DBExecutor) error
		GetChildren(ctx context.Context, parentID string, exec ...core.DBExecutor) ([]User, error)
	}

	// GamificationInitializer creates the zeroed progress row for a new student.
	// Declared here so the gamification package can depend on this one.
	GamificationInitializer interface {
		InitStudent(ctx context.Context, userID string, exec ...core.DBExecutor) error
	}

	Service interface {
		Register(ctx context.Context, fields RegisterFields) (User, error)
		Authenticate(ctx context.Context, username, password string) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByUsername(ctx context.Context, username string) (User, error)
		Students(ctx context.Context) ([]User, error)
		ChangePassword(ctx context.Context, usr *User, oldPwd, newPwd string) error
		SetPassword(ctx context.Context, usr *User, pwd string) error
		LinkParent(ctx context.Context, parentID, studentID string) error
		Children(ctx context.Context, parentID string) ([]User, error)
	}

	RegisterFields struct {
		Username string
		Name     string
		Email    string
		Password string
		Role     string
	}

	service struct {
		db       core.DB
		repo     Repository
		gameInit GamificationInitializer
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, gameInit GamificationInitializer, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		db:       db,
		repo:     repo,
		gameInit: gameInit,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

func (svc *service) Register(ctx context.Context, fields RegisterFields) (User, error) {
	fields.Username = core.CleanString(fields.Username, true)
	fields.Name = core.CleanString(fields.Name)
	fields.Email = core.CleanString(fields.Email, true)
	fields.Role = core.CleanString(fields.Role, true)

	if _, err := svc.repo.GetUserByUsername(ctx, fields.Username); err == nil {
		return User{}, ErrUsernameExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, errors.Wrap(err, "checking username uniqueness")
	}
	if _, err := svc.repo.GetUserByEmail(ctx, fields.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}

	usr := User{
		Username:  fields.Username,
		Name:      fields.Name,
		Email:     fields.Email,
		Role:      fields.Role,
		IsActive:  true,
		CreatedAt: core.NowFunc(),
	}
	if err := ValidatePassword(fields.Password, &usr); err != nil {
		return User{}, err
	}
	if err := usr.SetPassword(fields.Password); err != nil {
		return User{}, err
	}

	err := core.RunInTx(ctx, svc.db, func(exec ...core.DBExecutor) error {
		if usr.IsStudent() {
			count, err := svc.repo.CountStudents(ctx, exec...)
			if err != nil {
				return errors.Wrap(err, "counting students")
			}
			usr.StudentID = NewStudentID(usr.CreatedAt.Year(), count)
		}
		if err := svc.repo.CreateUser(ctx, &usr, exec...); err != nil {
			return errors.Wrap(err, "creating user")
		}
		if usr.IsStudent() && svc.gameInit != nil {
			if err := svc.gameInit.InitStudent(ctx, usr.ID, exec...); err != nil {
				return errors.Wrap(err, "initializing student progress")
			}
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}

	svc.sendWelcomeEmail(&usr)
	return usr, nil
}

func (svc *service) Authenticate(ctx context.Context, username, password string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(username, true))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "getting user by username")
	}
	if !usr.IsActive {
		return User{}, ErrUserInactive
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByUsername(ctx context.Context, username string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(username, true))
}

func (svc *service) Students(ctx context.Context) ([]User, error) {
	students, err := svc.repo.GetStudents(ctx)
	return students, errors.Wrap(err, "getting students")
}

func (svc *service) ChangePassword(ctx context.Context, usr *User, oldPwd, newPwd string) error {
	if err := usr.CheckPassword(oldPwd); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "old_password", Error: "wrong password"})
	}
	return svc.SetPassword(ctx, usr, newPwd)
}

func (svc *service) SetPassword(ctx context.Context, usr *User, pwd string) error {
	if err := ValidatePassword(pwd, usr); err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.UpdateUser(ctx, usr), "updating user")
}

func (svc *service) LinkParent(ctx context.Context, parentID, studentID string) error {
	parent, err := svc.repo.GetUserByID(ctx, parentID)
	if err != nil {
		return errors.Wrap(err, "getting parent")
	}
	if !parent.IsParent() {
		return core.NewValidationError(nil, core.FieldError{Field: "parent_id", Error: "user is not a parent"})
	}
	student, err := svc.repo.GetUserByID(ctx, studentID)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	if !student.IsStudent() {
		return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "user is not a student"})
	}
	return errors.Wrap(svc.repo.LinkParent(ctx, parentID, studentID), "linking parent to student")
}

func (svc *service) Children(ctx context.Context, parentID string) ([]User, error) {
	children, err := svc.repo.GetChildren(ctx, parentID)
	return children, errors.Wrap(err, "getting children")
}

func (svc *service) sendWelcomeEmail(usr *User) {
	if svc.mailSvc == nil {
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{usr.Emailer()},
		Subject: fmt.Sprintf("Welcome to %s!", core.Conf.AppName),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s account is ready. Log in with your username %q to get started.\n",
			usr.Name, core.Conf.AppName, usr.Username,
		),
	}
	if err := svc.mailSvc.SendMessages(msg); err != nil {
		svc.logger.Error("sending welcome email", err)
	}
}
