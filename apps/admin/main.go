package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/classroom"
	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/dashboard"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
	emailsvc "github.com/mathsol/academy/services/email"
	exportsvc "github.com/mathsol/academy/services/export"
	logsvc "github.com/mathsol/academy/services/logger"
	"github.com/mathsol/academy/storage/database"
	dummydb "github.com/mathsol/academy/storage/database/dummy"
	boiledrepos "github.com/mathsol/academy/storage/database/sqlboiler"
)

var logger *log.Logger

func main() {
	os.Exit(run())
}

func run() int {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	defer appLogger.Close()

	var (
		units    curriculum.Repository
		classes  classroom.Repository
		students student.Repository
		logs     evaluation.Repository
		db       *sqlx.DB
	)
	if conf.Database.InMemory() {
		mem := dummydb.Open()
		units = dummydb.NewUnitRepository(mem)
		classes = dummydb.NewClassRepository(mem)
		students = dummydb.NewStudentRepository(mem)
		logs = dummydb.NewLogRepository(mem)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.CreateIfNotExist(ctx, conf)
		cancel()
		if err != nil {
			logger.Printf("error: %s", err)
			return 1
		}
		if db, err = database.Open(conf); err != nil {
			logger.Printf("error: %s", err)
			return 1
		}
		defer db.Close()
		units = boiledrepos.NewUnitRepository(db)
		classes = boiledrepos.NewClassRepository(db)
		students = boiledrepos.NewStudentRepository(db)
		logs = boiledrepos.NewLogRepository(db)
	}

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}

	cli := commandLine{
		conf:       conf,
		db:         db,
		curriculum: curriculum.NewService(units, validate),
		aggregator: dashboard.NewAggregator(classes, students, logs, appLogger, dashboard.OptionsFromConfig(conf)),
		exporter:   exportsvc.NewService(conf.Timezone),
		mailSvc:    mailSvc,
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		return 1
	}
	return 0
}
