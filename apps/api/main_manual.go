package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

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

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	must(err)

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Close()

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	// set up storage
	var (
		storage       io.Closer
		classroomRepo classroom.Repository
		courseRepo    course.Repository
		groupRepo     group.Repository
		subjectRepo   subject.Repository
	)
	if conf.Database.Engine == database.EngineMemory {
		db, _ := inmemdb.Open()
		storage = closerFunc(func() error { db.Reset(); return nil })
		classroomRepo = inmemdb.NewClassroomRepository(db)
		courseRepo = inmemdb.NewCourseRepository(db)
		groupRepo = inmemdb.NewGroupRepository(db)
		subjectRepo = inmemdb.NewSubjectRepository(db)
	} else {
		db, err := database.Setup(context.Background(), conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		storage = db
		classroomRepo = sqlxrepos.NewClassroomRepository(db)
		courseRepo = sqlxrepos.NewCourseRepository(db)
		groupRepo = sqlxrepos.NewGroupRepository(db)
		subjectRepo = sqlxrepos.NewSubjectRepository(db)
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.Options{
		Conf:         conf,
		Logger:       logger,
		Issuer:       auth.NewIssuer(conf),
		Validate:     validate,
		Translator:   translator,
		ClassroomSvc: classroom.NewService(classroomRepo, validate),
		CourseSvc:    course.NewService(courseRepo, subjectRepo, groupRepo, validate),
		GroupSvc:     group.NewService(groupRepo, validate),
		SubjectSvc:   subject.NewService(subjectRepo, validate),
	})
	run(conf, logger, server, storage)
}
