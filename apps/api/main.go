package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/shule/apps/api/echoapi"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/homework"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/demo"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	"github.com/trezcool/shule/storage/database/inmem"
	"github.com/trezcool/shule/storage/database/sqlxrepos"
	redisstore "github.com/trezcool/shule/storage/redis"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
	)
	logger.Enable(!conf.Debug)

	// set up storage
	var (
		db       core.DB
		usrRepo  user.Repository
		attRepo  attendance.Repository
		gameRepo gamification.Repository
		hwRepo   homework.Repository
	)
	if conf.Database.InMemory {
		usrRepo = inmem.NewUserRepository()
		attRepo = inmem.NewAttendanceRepository()
		gameRepo = inmem.NewGamificationRepository(usrRepo)
		hwRepo = inmem.NewHomeworkRepository()
	} else {
		sqlxDB, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer sqlxDB.Close()

		db = sqlxDB
		usrRepo = sqlxrepos.NewUserRepository(db)
		attRepo = sqlxrepos.NewAttendanceRepository(db)
		gameRepo = sqlxrepos.NewGamificationRepository(db)
		hwRepo = sqlxrepos.NewHomeworkRepository(db)
	}

	var lbCache gamification.LeaderboardCache
	if conf.Redis.Address != "" {
		cache, err := redisstore.NewLeaderboardCache(conf.Redis)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
		}
		defer cache.Close()
		lbCache = cache
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(os.Stdout)
	} else {
		mailSvc = emailsvc.NewSendgridService()
	}
	gameSvc := gamification.NewService(gameRepo, lbCache, logger)
	usrSvc := user.NewService(db, usrRepo, gameSvc, mailSvc, logger)
	attSvc := attendance.NewService(db, attRepo, gameSvc, logger)
	hwSvc := homework.NewService(db, hwRepo, gameSvc, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := core.NewValidator()

	ctx := context.Background()
	if err := gameSvc.EnsureCatalog(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("seeding achievement catalog: %v", err), err)
	}
	if conf.DemoData {
		svcs := demo.Services{UserSvc: usrSvc, AttendanceSvc: attSvc, HomeworkSvc: hwSvc}
		if err := demo.Seed(ctx, svcs, logger); err != nil {
			logger.Error(fmt.Sprintf("seeding demo data: %v", err), err)
		}
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Logger:        logger,
		UserSvc:       usrSvc,
		AttendanceSvc: attSvc,
		GameSvc:       gameSvc,
		HomeworkSvc:   hwSvc,
		Validate:      validate,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(conf.Database)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
