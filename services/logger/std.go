package logsvc

import (
	"log"

	"github.com/trezcool/masomo-admin/core"
)

// StdLogger writes to a standard logger only. Debug messages are dropped unless debug is on.
type StdLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger, debug bool) *StdLogger {
	return &StdLogger{std: std, debug: debug}
}

func printTo(std *log.Logger, level, msg string, args []interface{}) {
	std.Println(level + ": " + msg)
	for _, arg := range args {
		std.Printf("%+v\n", arg)
	}
}

func (l StdLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		printTo(l.std, "DEBUG", msg, args)
	}
}

func (l StdLogger) Info(msg string, args ...interface{}) { printTo(l.std, "INFO", msg, args) }

func (l StdLogger) Warn(msg string, args ...interface{}) { printTo(l.std, "WARN", msg, args) }

func (l StdLogger) Error(msg string, args ...interface{}) { printTo(l.std, "ERROR", msg, args) }

func (l StdLogger) Fatal(msg string, args ...interface{}) {
	printTo(l.std, "FATAL", msg, args)
	l.std.Fatal(msg)
}
