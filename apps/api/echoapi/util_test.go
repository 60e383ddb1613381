package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/homework"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	"github.com/trezcool/shule/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	server  *Server
	usrSvc  user.Service
	attSvc  attendance.Service
	gameSvc gamification.Service
	hwSvc   homework.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if core.Conf == nil {
		core.NewConfig()
	}
	core.Conf.Debug = false
	core.Conf.TestMode = true

	usrRepo := inmem.NewUserRepository()
	gameSvc := gamification.NewService(inmem.NewGamificationRepository(usrRepo), nil, nopLogger{})
	require.NoError(t, gameSvc.EnsureCatalog(context.Background()))
	usrSvc := user.NewService(nil, usrRepo, gameSvc, emailsvc.NewConsoleService(testWriter{t}), nopLogger{})
	attSvc := attendance.NewService(nil, inmem.NewAttendanceRepository(), gameSvc, nopLogger{})
	hwSvc := homework.NewService(nil, inmem.NewHomeworkRepository(), gameSvc, nopLogger{})

	server := NewServer(ServerDeps{
		Logger:         nopLogger{},
		UserSvc:        usrSvc,
		AttendanceSvc:  attSvc,
		GameSvc:        gameSvc,
		HomeworkSvc:    hwSvc,
		Validate:       core.NewValidator(),
		DisableReqLogs: true,
	})
	return &testApp{
		server:  server,
		usrSvc:  usrSvc,
		attSvc:  attSvc,
		gameSvc: gameSvc,
		hwSvc:   hwSvc,
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

const testPassword = "s3cur3-p@ssw0rd!"

func (app *testApp) register(t *testing.T, uname, role string) user.User {
	t.Helper()
	usr, err := app.usrSvc.Register(context.Background(), user.RegisterFields{
		Username: uname,
		Name:     "Test " + uname,
		Email:    uname + "@test.cd",
		Password: testPassword,
		Role:     role,
	})
	require.NoError(t, err)
	return usr
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	require.NoError(t, err)
	return token
}

func (app *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}
