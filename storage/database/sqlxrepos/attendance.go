package sqlxrepos

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepo struct {
	db core.DB
}

var _ attendance.Repository = (*attendanceRepo)(nil)

func NewAttendanceRepository(db core.DB) attendance.Repository {
	return &attendanceRepo{db: db}
}

func (repo *attendanceRepo) CreateRecord(ctx context.Context, rec *attendance.Record, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, date, status, method, check_in_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.StudentID, rec.Date, rec.Status, rec.Method, rec.CheckInTime, rec.CreatedAt,
	)
	return err
}

func (repo *attendanceRepo) GetRecordsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]attendance.Record, error) {
	var recs []attendance.Record
	err := executor(repo.db, exec...).SelectContext(ctx, &recs, `
		SELECT * FROM attendance_records WHERE student_id = $1 ORDER BY date DESC`,
		studentID,
	)
	return recs, err
}

func (repo *attendanceRepo) GetRecordsByDate(ctx context.Context, date string, exec ...core.DBExecutor) ([]attendance.Record, error) {
	var recs []attendance.Record
	err := executor(repo.db, exec...).SelectContext(ctx, &recs, `
		SELECT * FROM attendance_records WHERE date = $1 ORDER BY created_at`,
		date,
	)
	return recs, err
}

func (repo *attendanceRepo) CreateQRCode(ctx context.Context, qr *attendance.QRCode, exec ...core.DBExecutor) error {
	_, err := executor(repo.db, exec...).ExecContext(ctx, `
		INSERT INTO qr_codes (id, code, date, expires_at, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		qr.ID, qr.Code, qr.Date, qr.ExpiresAt, qr.IsActive, qr.CreatedBy, qr.CreatedAt,
	)
	return err
}

func (repo *attendanceRepo) GetQRCodeByCode(ctx context.Context, code string, exec ...core.DBExecutor) (attendance.QRCode, error) {
	var qr attendance.QRCode
	err := executor(repo.db, exec...).GetContext(ctx, &qr, `SELECT * FROM qr_codes WHERE code = $1`, code)
	return qr, trapNoRowsErr(err, attendance.ErrNotFound)
}
