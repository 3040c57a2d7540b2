package dig_container

import (
	"fmt"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/mathsol/academy/apps/api/echo"
	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/account"
	"github.com/mathsol/academy/core/classroom"
	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/dashboard"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/recommend"
	"github.com/mathsol/academy/core/student"
	exportsvc "github.com/mathsol/academy/services/export"
	logsvc "github.com/mathsol/academy/services/logger"
	"github.com/mathsol/academy/storage/database"
	dummydb "github.com/mathsol/academy/storage/database/dummy"
	boiledrepos "github.com/mathsol/academy/storage/database/sqlboiler"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// StoreCloserParam releases the store on shutdown.
	StoreCloserParam struct {
		dig.In
		Closer io.Closer `name:"dbCloser"`
	}

	// Store is the persistence layer picked by database.engine.
	Store struct {
		dig.Out
		Closer   io.Closer `name:"dbCloser"`
		Units    curriculum.Repository
		Students student.Repository
		Classes  classroom.Repository
		Logs     evaluation.Repository
		Accounts account.Repository
	}

	serverParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		CurriculumSvc *curriculum.Service
		StudentSvc    *student.Service
		ClassSvc      *classroom.Service
		EvaluationSvc *evaluation.Service
		Engine        *recommend.Engine
		AccountSvc    *account.Service
		Aggregator    *dashboard.Aggregator
		Exporter      *exportsvc.Service
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newStore(conf *core.Config, loggerParam DBLoggerParam) Store {
	if conf.Database.InMemory() {
		loggerParam.Logger.Warn("using the in-memory store: data is lost on exit")
		db := dummydb.Open()
		return Store{
			Closer:   nopCloser{},
			Units:    dummydb.NewUnitRepository(db),
			Students: dummydb.NewStudentRepository(db),
			Classes:  dummydb.NewClassRepository(db),
			Logs:     dummydb.NewLogRepository(db),
			Accounts: dummydb.NewAccountRepository(db),
		}
	}

	db, err := database.SetUp(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Store{
		Closer:   db,
		Units:    boiledrepos.NewUnitRepository(db),
		Students: boiledrepos.NewStudentRepository(db),
		Classes:  boiledrepos.NewClassRepository(db),
		Logs:     boiledrepos.NewLogRepository(db),
		Accounts: boiledrepos.NewAccountRepository(db),
	}
}

func newValidator(conf *core.Config) (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator, conf.Account.MinPhoneDigits)
	classroom.InitValidators(validate, translator)
	return validate, translator
}

func newExporter(conf *core.Config) *exportsvc.Service {
	return exportsvc.NewService(conf.Timezone)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(p.Conf, p.Logger, echoapi.Deps{
		Validate:      p.Validate,
		Translator:    p.Translator,
		CurriculumSvc: p.CurriculumSvc,
		StudentSvc:    p.StudentSvc,
		ClassSvc:      p.ClassSvc,
		EvaluationSvc: p.EvaluationSvc,
		Engine:        p.Engine,
		AccountSvc:    p.AccountSvc,
		Aggregator:    p.Aggregator,
		Exporter:      p.Exporter,
	})
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newValidator))
	must(c.Provide(newExporter))
	must(c.Provide(recommend.OptionsFromConfig))
	must(c.Provide(dashboard.OptionsFromConfig))
	must(c.Provide(curriculum.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(classroom.NewService))
	must(c.Provide(evaluation.NewService))
	must(c.Provide(recommend.NewEngine))
	must(c.Provide(account.NewService))
	must(c.Provide(dashboard.NewAggregator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
