package common

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Log Levels
// --------------------------------------------------------------------------

type LogLevel int

const (
	CRITICAL LogLevel = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

// ParseLogLevel converts a string level to a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}

// --------------------------------------------------------------------------
// Logger Interface
// --------------------------------------------------------------------------

// ILogger is the logging facade used across the project. Loggers are named
// per package and retrieved with GetLogger.
type ILogger interface {
	SetLevel(level LogLevel)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// --------------------------------------------------------------------------
// Custom Logger (implements ILogger)
// --------------------------------------------------------------------------

// rkvLogger implements the ILogger interface with custom formatting
type rkvLogger struct {
	name   string
	level  LogLevel
	logger *log.Logger
}

func (l *rkvLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *rkvLogger) Debugf(format string, args ...interface{}) {
	if l.level >= DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *rkvLogger) Infof(format string, args ...interface{}) {
	if l.level >= INFO {
		l.log("INFO", format, args...)
	}
}

func (l *rkvLogger) Warningf(format string, args ...interface{}) {
	if l.level >= WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *rkvLogger) Errorf(format string, args ...interface{}) {
	if l.level >= ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *rkvLogger) Panicf(format string, args ...interface{}) {
	if l.level >= CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *rkvLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Registry
// --------------------------------------------------------------------------

var (
	loggers = xsync.NewMapOf[string, *rkvLogger]()

	// defaultLevel is the level assigned to loggers created after
	// InitLoggers ran
	defaultLevel atomic.Int64
)

func init() {
	defaultLevel.Store(int64(INFO))
}

// GetLogger returns the named logger, creating it at the configured default
// level on first use. Safe for concurrent use.
func GetLogger(pkgName string) ILogger {
	l, _ := loggers.LoadOrCompute(pkgName, func() *rkvLogger {
		// Create standard logger with custom flags
		stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

		return &rkvLogger{
			name:   pkgName,
			level:  LogLevel(defaultLevel.Load()),
			logger: stdLogger,
		}
	})
	return l
}

// InitLoggers applies the configured log level to every logger created so
// far and to all loggers created afterwards.
func InitLoggers(config ServerConfig) {
	level := ParseLogLevel(config.LogLevel)
	defaultLevel.Store(int64(level))

	loggers.Range(func(_ string, l *rkvLogger) bool {
		l.SetLevel(level)
		return true
	})
}
