package sqlxrepos

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/homework"
)

type homeworkRepo struct {
	db core.DB
}

var _ homework.Repository = (*homeworkRepo)(nil)

func NewHomeworkRepository(db core.DB) homework.Repository {
	return &homeworkRepo{db: db}
}

func (repo *homeworkRepo) CreateHomework(ctx context.Context, hw *homework.Homework, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO homeworks (id, title, description, subject, due_date, assigned_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		hw.ID, hw.Title, hw.Description, hw.Subject, hw.DueDate, hw.AssignedBy, hw.CreatedAt,
	)
	return err
}

func (repo *homeworkRepo) GetHomework(ctx context.Context, id string, exec ...core.DBExecutor) (homework.Homework, error) {
	var hw homework.Homework
	err := executor(repo.db, exec...).GetContext(ctx, &hw, `SELECT * FROM homeworks WHERE id = $1`, id)
	return hw, trapNoRowsErr(err, homework.ErrNotFound)
}

func (repo *homeworkRepo) GetHomeworks(ctx context.Context, exec ...core.DBExecutor) ([]homework.Homework, error) {
	var hws []homework.Homework
	err := executor(repo.db, exec...).SelectContext(ctx, &hws, `SELECT * FROM homeworks ORDER BY due_date`)
	return hws, err
}

func (repo *homeworkRepo) GetHomeworksByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]homework.Homework, error) {
	var hws []homework.Homework
	err := executor(repo.db, exec...).SelectContext(ctx, &hws, `
		SELECT * FROM homeworks WHERE assigned_by = $1 ORDER BY due_date`,
		teacherID,
	)
	return hws, err
}

func (repo *homeworkRepo) CreateSubmission(ctx context.Context, sub *homework.Submission, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO homework_submissions (id, homework_id, student_id, content, is_on_time, grade, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sub.ID, sub.HomeworkID, sub.StudentID, sub.Content, sub.IsOnTime, sub.Grade, sub.SubmittedAt,
	)
	return err
}

func (repo *homeworkRepo) GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (homework.Submission, error) {
	var sub homework.Submission
	err := executor(repo.db, exec...).GetContext(ctx, &sub, `SELECT * FROM homework_submissions WHERE id = $1`, id)
	return sub, trapNoRowsErr(err, homework.ErrSubmissionNotFound)
}

func (repo *homeworkRepo) GetSubmissionsByHomework(ctx context.Context, homeworkID string, exec ...core.DBExecutor) ([]homework.Submission, error) {
	var subs []homework.Submission
	err := executor(repo.db, exec...).SelectContext(ctx, &subs, `
		SELECT * FROM homework_submissions WHERE homework_id = $1 ORDER BY submitted_at`,
		homeworkID,
	)
	return subs, err
}

func (repo *homeworkRepo) GetSubmissionsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]homework.Submission, error) {
	var subs []homework.Submission
	err := executor(repo.db, exec...).SelectContext(ctx, &subs, `
		SELECT * FROM homework_submissions WHERE student_id = $1 ORDER BY submitted_at DESC`,
		studentID,
	)
	return subs, err
}

func (repo *homeworkRepo) UpdateSubmission(ctx context.Context, sub *homework.Submission, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		UPDATE homework_submissions
		SET content = $2, is_on_time = $3, grade = $4
		WHERE id = $1`,
		sub.ID, sub.Content, sub.IsOnTime, sub.Grade,
	)
	return err
}
