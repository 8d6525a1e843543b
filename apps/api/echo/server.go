package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/auth"
	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/course"
	"github.com/trezcool/masomo-admin/core/group"
	"github.com/trezcool/masomo-admin/core/resource"
	"github.com/trezcool/masomo-admin/core/subject"
)

type (
	ClassroomService = resource.Service[classroom.Classroom, classroom.NewClassroom, classroom.UpdateClassroom]
	CourseService    = resource.Service[course.Course, course.NewCourse, course.UpdateCourse]
	GroupService     = resource.Service[group.Group, group.NewGroup, group.UpdateGroup]
	SubjectService   = resource.Service[subject.Subject, subject.NewSubject, subject.UpdateSubject]

	// Options holds the dependencies of the Server.
	Options struct {
		Conf       *core.Config
		Logger     core.Logger
		Issuer     *auth.Issuer
		Validate   *validator.Validate
		Translator ut.Translator

		ClassroomSvc ClassroomService
		CourseSvc    CourseService
		GroupSvc     GroupService
		SubjectSvc   SubjectService
	}

	Server struct {
		opts     Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(opts Options) *Server {
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1", authMiddleware(s.opts.Issuer))
	v1.GET("/me", me)

	registerResourceAPI(v1.Group("/classrooms"), s.opts.ClassroomSvc)
	registerResourceAPI(v1.Group("/courses"), s.opts.CourseSvc)
	registerResourceAPI(v1.Group("/groups"), s.opts.GroupSvc)
	registerResourceAPI(v1.Group("/subjects"), s.opts.SubjectSvc)
}

// Start listens on the configured address. Errors are sent to Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Masomo API!")
}
