// Package logging builds the app's logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultDir is where log files go unless Options.Dir says otherwise.
const DefaultDir = "./storage/logs"

type Fields = logrus.Fields

// Options controls where and how much the logger writes.
type Options struct {
	Env   string // "test" disables the log file
	Level string
	Dir   string

	// Stderr replaces os.Stderr, mostly for tests.
	Stderr io.Writer
}

// New returns a logger writing to stderr and, outside tests, to a daily
// rotated file. An unknown level falls back to info and is reported.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
		err = fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.Env == "test",
		TimestampFormat: "02 Jan 06 - 15:04",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
		},
	})

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	writers := []io.Writer{stderr}
	if opts.Env != "test" {
		writers = append(writers, FileWriter(opts.Dir, time.Now()))
	}

	logger.SetOutput(io.MultiWriter(writers...))
	logger.SetReportCaller(true)
	return logger, err
}

// FileWriter is the rotating log file for the day of now.
func FileWriter(dir string, now time.Time) *lumberjack.Logger {
	if dir == "" {
		dir = DefaultDir
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, fmt.Sprintf("gazeremote-%s.log", now.Format("2006-01-02"))),
		LocalTime:  true,
		Compress:   true,
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
	}
}
