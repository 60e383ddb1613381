package main

import (
	"log"
	"os"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/homework"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/demo"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	"github.com/trezcool/shule/storage/database/sqlxrepos"
)

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
	)

	// set up DB
	sqlxDB, err := database.Open(conf.Database)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer sqlxDB.Close()
	if err = database.Migrate(sqlxDB.DB); err != nil {
		logger.Fatal("migrating database", err)
	}

	var db core.DB = sqlxDB
	usrRepo := sqlxrepos.NewUserRepository(db)
	gameSvc := gamification.NewService(sqlxrepos.NewGamificationRepository(db), nil, logger)
	usrSvc := user.NewService(db, usrRepo, gameSvc, emailsvc.NewConsoleService(os.Stdout), logger)
	attSvc := attendance.NewService(db, sqlxrepos.NewAttendanceRepository(db), gameSvc, logger)
	hwSvc := homework.NewService(db, sqlxrepos.NewHomeworkRepository(db), gameSvc, logger)

	// start CLI
	cli := commandLine{
		usrSvc:  usrSvc,
		gameSvc: gameSvc,
		demoSvcs: demo.Services{
			UserSvc:       usrSvc,
			AttendanceSvc: attSvc,
			HomeworkSvc:   hwSvc,
		},
		logger: logger,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}
