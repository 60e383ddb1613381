package attendance

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/gamification"
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec *Record, exec ...core.DBExecutor) error
		GetRecordsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Record, error)
		GetRecordsByDate(ctx context.Context, date string, exec ...core.DBExecutor) ([]Record, error)
		CreateQRCode(ctx context.Context, qr *QRCode, exec ...core.DBExecutor) error
		GetQRCodeByCode(ctx context.Context, code string, exec ...core.DBExecutor) (QRCode, error)
	}

	Service interface {
		Mark(ctx context.Context, studentID, date, status, method string) (MarkResult, error)
		QRCheckIn(ctx context.Context, studentID, code string) (MarkResult, error)
		GenerateQRCode(ctx context.Context, createdBy, date string, validFor time.Duration) (QRCode, error)
		Stats(ctx context.Context, studentID string) (Stats, error)
		RecordsByStudent(ctx context.Context, studentID string) ([]Record, error)
		RecordsByDate(ctx context.Context, date string) ([]Record, error)
	}

	// MarkResult carries the new record along with the student's progress after
	// streak and XP updates.
	MarkResult struct {
		Record    Record                    `json:"record"`
		Progress  gamification.Gamification `json:"progress"`
		XPAwarded int                       `json:"xp_awarded"`
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

// Mark records attendance for a student on a date. A present mark also
// refreshes the streak and awards check-in XP in the same transaction; an
// absent mark only stores the record. Marks are not deduplicated, a second
// record for the same date is stored and counted alongside the first.
func (svc *service) Mark(ctx context.Context, studentID, date, status, method string) (MarkResult, error) {
	var res MarkResult
	err := core.RunInTx(ctx, svc.db, func(exec ...core.DBExecutor) error {
		return svc.mark(ctx, &res, studentID, date, status, method, exec...)
	})
	if err != nil {
		return MarkResult{}, err
	}
	svc.logger.Info("attendance marked", "student", studentID, "date", date, "status", status, "method", method)
	return res, nil
}

func (svc *service) mark(ctx context.Context, res *MarkResult, studentID, date, status, method string, exec ...core.DBExecutor) error {
	now := core.NowFunc()
	rec := Record{
		ID:        uuid.New().String(),
		StudentID: studentID,
		Date:      date,
		Status:    status,
		Method:    method,
		CreatedAt: now,
	}
	if rec.IsPresent() {
		rec.CheckInTime = &now
	}
	if err := svc.repo.CreateRecord(ctx, &rec, exec...); err != nil {
		return errors.Wrap(err, "creating record")
	}
	res.Record = rec

	if !rec.IsPresent() {
		// absences never move the streak or earn XP
		game, err := svc.gameSvc.Progress(ctx, studentID)
		if err != nil && !errors.Is(err, gamification.ErrNotFound) {
			return errors.Wrap(err, "getting progress")
		}
		res.Progress = game
		return nil
	}

	current, longest, totalDays, err := svc.computeStreak(ctx, studentID, now, exec...)
	if err != nil {
		return err
	}
	if _, err = svc.gameSvc.ApplyStreak(ctx, studentID, current, longest, totalDays, exec...); err != nil {
		return err
	}
	game, err := svc.gameSvc.AwardXP(ctx, studentID, XPPerCheckIn, exec...)
	if err != nil {
		return err
	}

	res.Progress = game
	res.XPAwarded = XPPerCheckIn
	return nil
}

// computeStreak walks the student's present days backwards from today; day i
// of the walk must be exactly i calendar days ago or the streak is broken.
func (svc *service) computeStreak(ctx context.Context, studentID string, now time.Time, exec ...core.DBExecutor) (current, longest, totalDays int, err error) {
	records, err := svc.repo.GetRecordsByStudent(ctx, studentID, exec...)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "getting records")
	}

	var presentDates []string
	for _, rec := range records {
		if rec.IsPresent() {
			presentDates = append(presentDates, rec.Date)
		}
	}
	totalDays = len(presentDates)
	sort.Sort(sort.Reverse(sort.StringSlice(presentDates)))

	for i, dateStr := range presentDates {
		date, perr := core.ParseDate(dateStr)
		if perr != nil {
			return 0, 0, 0, errors.Wrapf(perr, "parsing record date %q", dateStr)
		}
		if core.DaysBetween(now, date) != i {
			break
		}
		current++
	}
	longest = current
	return current, longest, totalDays, nil
}

func (svc *service) QRCheckIn(ctx context.Context, studentID, code string) (MarkResult, error) {
	qr, err := svc.repo.GetQRCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return MarkResult{}, ErrQRNotFound
		}
		return MarkResult{}, errors.Wrap(err, "getting qr code")
	}
	if !qr.IsActive {
		return MarkResult{}, ErrQRInactive
	}
	if qr.Expired(core.NowFunc()) {
		return MarkResult{}, ErrQRExpired
	}
	return svc.Mark(ctx, studentID, qr.Date, StatusPresent, MethodQR)
}

func (svc *service) GenerateQRCode(ctx context.Context, createdBy, date string, validFor time.Duration) (QRCode, error) {
	now := core.NowFunc()
	if date == "" {
		date = core.FormatDate(now)
	}
	if validFor <= 0 {
		validFor = DefaultQRValidity
	}
	qr := QRCode{
		ID:        uuid.New().String(),
		Code:      NewCheckInCode(now),
		Date:      date,
		ExpiresAt: now.Add(validFor),
		IsActive:  true,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if err := svc.repo.CreateQRCode(ctx, &qr); err != nil {
		return QRCode{}, errors.Wrap(err, "creating qr code")
	}
	return qr, nil
}

func (svc *service) Stats(ctx context.Context, studentID string) (Stats, error) {
	records, err := svc.repo.GetRecordsByStudent(ctx, studentID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "getting records")
	}
	var stats Stats
	for _, rec := range records {
		if rec.IsPresent() {
			stats.Present++
		} else {
			stats.Absent++
		}
	}
	stats.TotalDays = stats.Present
	if len(records) > 0 {
		stats.AttendanceRate = int(float64(stats.Present)/float64(len(records))*100 + 0.5)
	}

	game, err := svc.gameSvc.Progress(ctx, studentID)
	if err != nil {
		if !errors.Is(err, gamification.ErrNotFound) {
			return Stats{}, errors.Wrap(err, "getting progress")
		}
	} else {
		stats.Streak = game.CurrentStreak
	}
	return stats, nil
}

func (svc *service) RecordsByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return svc.repo.GetRecordsByStudent(ctx, studentID)
}

func (svc *service) RecordsByDate(ctx context.Context, date string) ([]Record, error) {
	return svc.repo.GetRecordsByDate(ctx, date)
}
