package homework

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// XPOnTime is awarded for a submission made before the due date.
	XPOnTime = 100
	// XPLate is awarded for a submission made after the due date.
	XPLate = 50
)

var (
	ErrNotFound           = errors.New("homework not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type (
	Homework struct {
		ID          string    `json:"id" db:"id"`
		Title       string    `json:"title" db:"title"`
		Description string    `json:"description" db:"description"`
		Subject     string    `json:"subject" db:"subject"`
		DueDate     time.Time `json:"due_date" db:"due_date"`
		AssignedBy  string    `json:"assigned_by" db:"assigned_by"` // teacher user ID
		CreatedAt   time.Time `json:"created_at" db:"created_at"`
	}

	Submission struct {
		ID          string    `json:"id" db:"id"`
		HomeworkID  string    `json:"homework_id" db:"homework_id"`
		StudentID   string    `json:"student_id" db:"student_id"`
		Content     string    `json:"content" db:"content"`
		IsOnTime    bool      `json:"is_on_time" db:"is_on_time"`
		Grade       *int      `json:"grade" db:"grade"` // nil until graded
		SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	}
)

func (h *Homework) DueBy(t time.Time) bool { return !t.After(h.DueDate) }
