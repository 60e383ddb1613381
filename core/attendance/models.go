package attendance

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"

	MethodManual          = "manual"
	MethodQR              = "qr"
	MethodTeacherOverride = "teacher_override"

	// XPPerCheckIn is awarded for every present mark; absences earn nothing.
	XPPerCheckIn = 25

	// DefaultQRValidity is how long a generated check-in code stays usable.
	DefaultQRValidity = 30 * time.Minute
)

var (
	ErrNotFound   = errors.New("attendance record not found")
	ErrQRNotFound = errors.New("invalid check-in code")
	ErrQRInactive = errors.New("check-in code is no longer active")
	ErrQRExpired  = errors.New("check-in code has expired")
)

type (
	// Record is a single attendance mark for a student on a calendar date.
	Record struct {
		ID          string     `json:"id" db:"id"`
		StudentID   string     `json:"student_id" db:"student_id"` // user ID, not the STUxxx number
		Date        string     `json:"date" db:"date"`
		Status      string     `json:"status" db:"status"`
		Method      string     `json:"method" db:"method"`
		CheckInTime *time.Time `json:"check_in_time,omitempty" db:"check_in_time"`
		CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	}

	QRCode struct {
		ID        string    `json:"id" db:"id"`
		Code      string    `json:"code" db:"code"`
		Date      string    `json:"date" db:"date"`
		ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
		IsActive  bool      `json:"is_active" db:"is_active"`
		CreatedBy string    `json:"created_by" db:"created_by"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
	}

	// Stats summarizes a student's attendance. TotalDays counts present
	// records only; the rate is present over all records.
	Stats struct {
		AttendanceRate int `json:"rate"`
		Streak         int `json:"streak"`
		TotalDays      int `json:"total_days"`
		Present        int `json:"present"`
		Absent         int `json:"absent"`
	}
)

func (r *Record) IsPresent() bool { return r.Status == StatusPresent }

func (q *QRCode) Expired(now time.Time) bool { return now.After(q.ExpiresAt) }

// PNG renders the check-in code as a QR image.
func (q *QRCode) PNG(size int) ([]byte, error) {
	png, err := qrcode.Encode(q.Code, qrcode.Medium, size)
	return png, errors.Wrap(err, "encoding qr code")
}

const codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewCheckInCode builds a unique code of the form attendance_<millis>_<rand>.
func NewCheckInCode(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			panic(err) // crypto/rand is broken, nothing sane to do
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("attendance_%d_%s", now.UnixMilli(), suffix)
}
