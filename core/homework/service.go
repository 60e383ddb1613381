package homework

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/gamification"
)

type (
	Repository interface {
		CreateHomework(ctx context.Context, hw *Homework, exec ...core.DBExecutor) error
		GetHomework(ctx context.Context, id string, exec ...core.DBExecutor) (Homework, error)
		GetHomeworks(ctx context.Context, exec ...core.DBExecutor) ([]Homework, error)
		GetHomeworksByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Homework, error)
		CreateSubmission(ctx context.Context, sub *Submission, exec ...core.DBExecutor) error
		GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (Submission, error)
		GetSubmissionsByHomework(ctx context.Context, homeworkID string, exec ...core.DBExecutor) ([]Submission, error)
		GetSubmissionsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub *Submission, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, fields CreateFields) (Homework, error)
		Get(ctx context.Context, id string) (Homework, error)
		List(ctx context.Context) ([]Homework, error)
		ListByTeacher(ctx context.Context, teacherID string) ([]Homework, error)
		Submit(ctx context.Context, homeworkID, studentID, content string) (SubmitResult, error)
		Grade(ctx context.Context, submissionID string, grade int) (Submission, error)
		SubmissionsByHomework(ctx context.Context, homeworkID string) ([]Submission, error)
		SubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error)
	}

	CreateFields struct {
		Title       string
		Description string
		Subject     string
		DueDate     time.Time
		AssignedBy  string
	}

	// SubmitResult carries the new submission along with the student's progress
	// after the XP award.
	SubmitResult struct {
		Submission Submission                `json:"submission"`
		Progress   gamification.Gamification `json:"progress"`
		XPAwarded  int                       `json:"xp_awarded"`
	}

	service struct {
		db      core.DB
		repo    Repository
		gameSvc gamification.Service
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, gameSvc gamification.Service, logger core.Logger) Service {
	return &service{
		db:      db,
		repo:    repo,
		gameSvc: gameSvc,
		logger:  logger,
	}
}

func (svc *service) Create(ctx context.Context, fields CreateFields) (Homework, error) {
	hw := Homework{
		ID:          uuid.New().String(),
		Title:       core.CleanString(fields.Title),
		Description: core.CleanString(fields.Description),
		Subject:     core.CleanString(fields.Subject),
		DueDate:     fields.DueDate,
		AssignedBy:  fields.AssignedBy,
		CreatedAt:   core.NowFunc(),
	}
	if err := svc.repo.CreateHomework(ctx, &hw); err != nil {
		return Homework{}, errors.Wrap(err, "creating homework")
	}
	return hw, nil
}

func (svc *service) Get(ctx context.Context, id string) (Homework, error) {
	return svc.repo.GetHomework(ctx, id)
}

func (svc *service) List(ctx context.Context) ([]Homework, error) {
	return svc.repo.GetHomeworks(ctx)
}

func (svc *service) ListByTeacher(ctx context.Context, teacherID string) ([]Homework, error) {
	return svc.repo.GetHomeworksByTeacher(ctx, teacherID)
}

// Submit stores the student's work and awards XP, full for an on-time
// submission and half past the due date. Resubmissions are allowed and each
// earns XP again; the teacher sees every attempt.
func (svc *service) Submit(ctx context.Context, homeworkID, studentID, content string) (SubmitResult, error) {
	hw, err := svc.repo.GetHomework(ctx, homeworkID)
	if err != nil {
		return SubmitResult{}, errors.Wrap(err, "getting homework")
	}

	now := core.NowFunc()
	sub := Submission{
		ID:          uuid.New().String(),
		HomeworkID:  hw.ID,
		StudentID:   studentID,
		Content:     core.CleanString(content),
		IsOnTime:    hw.DueBy(now),
		SubmittedAt: now,
	}
	points := XPLate
	if sub.IsOnTime {
		points = XPOnTime
	}

	var res SubmitResult
	err = core.RunInTx(ctx, svc.db, func(exec ...core.DBExecutor) error {
		if err := svc.repo.CreateSubmission(ctx, &sub, exec...); err != nil {
			return errors.Wrap(err, "creating submission")
		}
		game, err := svc.gameSvc.AwardXP(ctx, studentID, points, exec...)
		if err != nil {
			return err
		}
		res = SubmitResult{Submission: sub, Progress: game, XPAwarded: points}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}
	svc.logger.Info("homework submitted", "homework", hw.Title, "student", studentID, "on_time", sub.IsOnTime)
	return res, nil
}

func (svc *service) Grade(ctx context.Context, submissionID string, grade int) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "getting submission")
	}
	sub.Grade = &grade
	if err = svc.repo.UpdateSubmission(ctx, &sub); err != nil {
		return Submission{}, errors.Wrap(err, "updating submission")
	}
	return sub, nil
}

func (svc *service) SubmissionsByHomework(ctx context.Context, homeworkID string) ([]Submission, error) {
	return svc.repo.GetSubmissionsByHomework(ctx, homeworkID)
}

func (svc *service) SubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error) {
	return svc.repo.GetSubmissionsByStudent(ctx, studentID)
}
