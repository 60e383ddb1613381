package user

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameExists     = core.NewValidationError(nil, core.FieldError{Field: "username", Error: "a user with this username already exists"})
	ErrEmailExists        = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "a user with this email already exists"})
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is deactivated")
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         string    `json:"role" db:"role"`
	StudentID    string    `json:"student_id,omitempty" db:"student_id"` // set for students only, eg. STU2026001
	PasswordHash []byte    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsParent() bool  { return u.Role == RoleParent }

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "generating password hash")
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	if len(u.PasswordHash) == 0 {
		return errors.New("password not set")
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd)); err != nil {
		return errors.Wrap(err, "comparing password hash")
	}
	return nil
}

func (u *User) Emailer() mail.Address {
	return mail.Address{Name: u.Name, Address: u.Email}
}

// NewStudentID formats a student number for the given admission year and the
// count of students already registered.
func NewStudentID(year, existing int) string {
	return fmt.Sprintf("STU%d%03d", year, existing+1)
}
