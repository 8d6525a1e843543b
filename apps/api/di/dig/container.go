package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo-admin/apps/api/echo"
	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/auth"
	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/course"
	"github.com/trezcool/masomo-admin/core/group"
	"github.com/trezcool/masomo-admin/core/subject"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
	"github.com/trezcool/masomo-admin/storage/database"
	inmemdb "github.com/trezcool/masomo-admin/storage/database/inmem"
	sqlxrepos "github.com/trezcool/masomo-admin/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage provides the repositories of the configured database engine.
	Storage struct {
		dig.Out
		Closer     io.Closer `name:"storage"`
		Classrooms classroom.Repository
		Courses    course.Repository
		Groups     group.Repository
		Subjects   subject.Repository
	}

	StorageParam struct {
		dig.In
		Closer io.Closer `name:"storage"`
	}

	ServerParams struct {
		dig.In
		Conf         *core.Config
		Logger       core.Logger
		Issuer       *auth.Issuer
		Validate     *validator.Validate
		Translator   ut.Translator
		ClassroomSvc echoapi.ClassroomService
		CourseSvc    echoapi.CourseService
		GroupSvc     echoapi.GroupService
		SubjectSvc   echoapi.SubjectService
	}
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.Engine == database.EngineMemory {
		db, _ := inmemdb.Open()
		loggerParam.Logger.Info("using the in-memory database: data is lost on shutdown")
		return Storage{
			Closer:     closerFunc(func() error { db.Reset(); return nil }),
			Classrooms: inmemdb.NewClassroomRepository(db),
			Courses:    inmemdb.NewCourseRepository(db),
			Groups:     inmemdb.NewGroupRepository(db),
			Subjects:   inmemdb.NewSubjectRepository(db),
		}
	}

	db, err := database.Setup(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{
		Closer:     db,
		Classrooms: sqlxrepos.NewClassroomRepository(db),
		Courses:    sqlxrepos.NewCourseRepository(db),
		Groups:     sqlxrepos.NewGroupRepository(db),
		Subjects:   sqlxrepos.NewSubjectRepository(db),
	}
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.Options{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Issuer:       p.Issuer,
		Validate:     p.Validate,
		Translator:   p.Translator,
		ClassroomSvc: p.ClassroomSvc,
		CourseSvc:    p.CourseSvc,
		GroupSvc:     p.GroupSvc,
		SubjectSvc:   p.SubjectSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	return newContainer(core.NewConfig)
}

func newContainer(newConfig interface{}) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(auth.NewIssuer))
	must(c.Provide(classroom.NewService, dig.As(new(echoapi.ClassroomService))))
	must(c.Provide(course.NewService, dig.As(new(echoapi.CourseService))))
	must(c.Provide(group.NewService, dig.As(new(echoapi.GroupService))))
	must(c.Provide(subject.NewService, dig.As(new(echoapi.SubjectService))))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
