package sqlxrepos

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type userRepo struct {
	db core.DB
}

var _ user.Repository = (*userRepo)(nil)

func NewUserRepository(db core.DB) user.Repository {
	return &userRepo{db: db}
}

func (repo *userRepo) CreateUser(ctx context.Context, usr *user.User, exec ...core.DBExecutor) error {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO users (id, username, name, email, role, student_id, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		usr.ID, usr.Username, usr.Name, usr.Email, usr.Role, usr.StudentID, usr.PasswordHash, usr.IsActive, usr.CreatedAt,
	)
	return err
}

func (repo *userRepo) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	err := executor(repo.db, exec...).GetContext(ctx, &usr, `SELECT * FROM users WHERE id = $1`, id)
	return usr, trapNoRowsErr(err, user.ErrNotFound)
}

func (repo *userRepo) GetUserByUsername(ctx context.Context, uname string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	err := executor(repo.db, exec...).GetContext(ctx, &usr, `SELECT * FROM users WHERE username = $1`, uname)
	return usr, trapNoRowsErr(err, user.ErrNotFound)
}

func (repo *userRepo) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	err := executor(repo.db, exec...).GetContext(ctx, &usr, `SELECT * FROM users WHERE email = $1`, email)
	return usr, trapNoRowsErr(err, user.ErrNotFound)
}

func (repo *userRepo) CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var count int
	err := executor(repo.db, exec...).GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = $1`, user.RoleStudent)
	return count, err
}

func (repo *userRepo) GetStudents(ctx context.Context, exec ...core.DBExecutor) ([]user.User, error) {
	var students []user.User
	err := executor(repo.db, exec...).SelectContext(ctx, &students, `
		SELECT * FROM users WHERE role = $1 ORDER BY name`,
		user.RoleStudent,
	)
	return students, err
}

func (repo *userRepo) UpdateUser(ctx context.Context, usr *user.User, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		UPDATE users
		SET username = $2, name = $3, email = $4, role = $5, student_id = $6, password_hash = $7, is_active = $8
		WHERE id = $1`,
		usr.ID, usr.Username, usr.Name, usr.Email, usr.Role, usr.StudentID, usr.PasswordHash, usr.IsActive,
	)
	return err
}

func (repo *userRepo) LinkParent(ctx context.Context, parentID, studentID string, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO parent_students (parent_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		parentID, studentID,
	)
	return err
}

func (repo *userRepo) GetChildren(ctx context.Context, parentID string, exec ...core.DBExecutor) ([]user.User, error) {
	var children []user.User
	err := executor(repo.db, exec...).SelectContext(ctx, &children, `
		SELECT u.*
		FROM users u
		JOIN parent_students ps ON ps.student_id = u.id
		WHERE ps.parent_id = $1
		ORDER BY u.name`,
		parentID,
	)
	return children, err
}
