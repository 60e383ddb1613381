package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepo struct {
	mu      sync.RWMutex
	records map[string]attendance.Record
	qrCodes map[string]attendance.QRCode // keyed by code
}

var _ attendance.Repository = (*attendanceRepo)(nil)

func NewAttendanceRepository() attendance.Repository {
	return &attendanceRepo{
		records: make(map[string]attendance.Record),
		qrCodes: make(map[string]attendance.QRCode),
	}
}

func (repo *attendanceRepo) CreateRecord(_ context.Context, rec *attendance.Record, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.records[rec.ID] = *rec
	return nil
}

func (repo *attendanceRepo) GetRecordsByStudent(_ context.Context, studentID string, _ ...core.DBExecutor) ([]attendance.Record, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var recs []attendance.Record
	for _, rec := range repo.records {
		if rec.StudentID == studentID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date > recs[j].Date })
	return recs, nil
}

func (repo *attendanceRepo) GetRecordsByDate(_ context.Context, date string, _ ...core.DBExecutor) ([]attendance.Record, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var recs []attendance.Record
	for _, rec := range repo.records {
		if rec.Date == date {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

func (repo *attendanceRepo) CreateQRCode(_ context.Context, qr *attendance.QRCode, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.qrCodes[qr.Code] = *qr
	return nil
}

func (repo *attendanceRepo) GetQRCodeByCode(_ context.Context, code string, _ ...core.DBExecutor) (attendance.QRCode, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if qr, ok := repo.qrCodes[code]; ok {
		return qr, nil
	}
	return attendance.QRCode{}, attendance.ErrNotFound
}
