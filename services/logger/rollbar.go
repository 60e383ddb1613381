// Package logger provides the application logger, with optional error
// reporting to Rollbar in deployed environments.
package logger

import (
	"fmt"
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
	rollbarerrs "github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/shule/core"
)

type rollbarLogger struct {
	lg      *log.Logger
	enabled bool // report to rollbar
}

var _ core.Logger = (*rollbarLogger)(nil)

// NewRollbarLogger wraps lg with leveled logging; Error and Fatal are also
// reported to Rollbar once Enable(true) is called.
func NewRollbarLogger(lg *log.Logger) core.Logger {
	rollbar.SetToken(core.Conf.RollbarToken)
	rollbar.SetEnvironment(core.Conf.Env)
	rollbar.SetCodeVersion(core.Conf.Build)
	rollbar.SetStackTracer(rollbarerrs.StackTracer)
	return &rollbarLogger{lg: lg}
}

func (rl *rollbarLogger) Enable(enabled bool) { rl.enabled = enabled }

func (rl *rollbarLogger) Debug(msg string, args ...interface{}) {
	if core.Conf.Debug {
		rl.log("DEBUG", msg, args...)
	}
}

func (rl *rollbarLogger) Info(msg string, args ...interface{}) {
	rl.log("INFO", msg, args...)
}

func (rl *rollbarLogger) Warn(msg string, args ...interface{}) {
	rl.log("WARN", msg, args...)
}

func (rl *rollbarLogger) Error(msg string, args ...interface{}) {
	rl.log("ERROR", msg, args...)
	if rl.enabled {
		rl.report(rollbar.ERR, msg, args...)
	}
}

func (rl *rollbarLogger) Fatal(msg string, args ...interface{}) {
	rl.log("FATAL", msg, args...)
	if rl.enabled {
		rl.report(rollbar.CRIT, msg, args...)
		rollbar.Wait()
	}
	os.Exit(1)
}

func (rl *rollbarLogger) log(level, msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s %v", msg, args)
	}
	rl.lg.Printf("[%s] %s", level, msg)
}

func (rl *rollbarLogger) report(level, msg string, args ...interface{}) {
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			rollbar.Log(level, err, msg)
			return
		}
	}
	rollbar.Log(level, msg)
}
