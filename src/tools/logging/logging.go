// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package logging provides the module loggers of quickboard, backed by zap.
package logging

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/quickboard/src/tools/exceptions"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log is the root logger. Its zap backend is set by Initialize.
var log = &zapLogger{}

// A Logger writes logs to a handler
type Logger interface {
	// Panic logs a error level message then panics
	Panic(msg string, ctx ...interface{})
	// Error logs an error level message
	Error(msg string, ctx ...interface{})
	// Warn logs a warning level message
	Warn(msg string, ctx ...interface{})
	// Info logs an information level message
	Info(msg string, ctx ...interface{})
	// Debug logs a debug level message. This may be very verbose
	Debug(msg string, ctx ...interface{})
	// New returns a child logger with the given context
	New(ctx ...interface{}) Logger
	// Sync the logger cache
	Sync() error
}

// zapLogger is a Logger writing to a zap.SugaredLogger.
//
// Child loggers are created before Initialize is called (in package init
// functions) so they bind to their parent's backend on first use, possibly
// from several goroutines at once.
type zapLogger struct {
	zap    atomic.Pointer[zap.SugaredLogger]
	ctx    []interface{}
	parent *zapLogger
}

func (l *zapLogger) write(level zapcore.Level, msg string, ctx []interface{}) {
	z := l.backend()
	if z == nil {
		return
	}
	switch level {
	case zapcore.DebugLevel:
		z.Debugw(msg, ctx...)
	case zapcore.InfoLevel:
		z.Infow(msg, ctx...)
	case zapcore.WarnLevel:
		z.Warnw(msg, ctx...)
	default:
		z.Errorw(msg, ctx...)
	}
}

// Panic logs a error level message then panics with the message and its context
func (l *zapLogger) Panic(msg string, ctx ...interface{}) {
	l.write(zapcore.ErrorLevel, msg, ctx)
	var panicData strings.Builder
	panicData.WriteString(msg)
	panicData.WriteByte('\n')
	for i := 0; i+1 < len(ctx); i += 2 {
		fmt.Fprintf(&panicData, "\t%v : %v\n", ctx[i], ctx[i+1])
	}
	panic(panicData.String())
}

// Error logs an error level message
func (l *zapLogger) Error(msg string, ctx ...interface{}) {
	l.write(zapcore.ErrorLevel, msg, ctx)
}

// Warn logs a warning level message
func (l *zapLogger) Warn(msg string, ctx ...interface{}) {
	l.write(zapcore.WarnLevel, msg, ctx)
}

// Info logs an information level message
func (l *zapLogger) Info(msg string, ctx ...interface{}) {
	l.write(zapcore.InfoLevel, msg, ctx)
}

// Debug logs a debug level message
func (l *zapLogger) Debug(msg string, ctx ...interface{}) {
	l.write(zapcore.DebugLevel, msg, ctx)
}

// Sync flushes the zap backend
func (l *zapLogger) Sync() error {
	z := l.backend()
	if z == nil {
		return errors.New("syncing a non-initialized logger")
	}
	return z.Sync()
}

// New returns a child logger with the given context
func (l *zapLogger) New(ctx ...interface{}) Logger {
	return &zapLogger{
		ctx:    ctx,
		parent: l,
	}
}

// backend returns the zap backend of this logger, deriving it from the
// closest initialized ancestor on first use. It returns nil before Initialize.
func (l *zapLogger) backend() *zap.SugaredLogger {
	if z := l.zap.Load(); z != nil {
		return z
	}
	if l.parent == nil {
		return nil
	}
	parent := l.parent.backend()
	if parent == nil {
		return nil
	}
	// another goroutine may have bound it first
	l.zap.CompareAndSwap(nil, parent.With(l.ctx...))
	return l.zap.Load()
}

// Initialize starts the root logger from the Debug, LogLevel, LogStdout
// and LogFile configuration keys.
func Initialize() {
	logConfig := zap.NewProductionConfig()
	if viper.GetBool("Debug") {
		logConfig = zap.NewDevelopmentConfig()
	}
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(viper.GetString("LogLevel"))); err != nil {
		fmt.Printf("error while reading log level. Falling back to info. Error: %s\n", err.Error())
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logConfig.Level = logLevel
	logConfig.EncoderConfig.TimeKey = "time"
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	outputPaths := []string{}
	if viper.GetBool("LogStdout") {
		outputPaths = append(outputPaths, "stdout")
	}
	if path := viper.GetString("LogFile"); path != "" {
		outputPaths = append(outputPaths, path)
	}
	logConfig.OutputPaths = outputPaths

	plainLog, err := logConfig.Build(zap.Fields(zap.String("app", "quickboard")))
	if err != nil {
		panic(err)
	}
	log.zap.Store(plainLog.Sugar())

	log.Info("Quickboard Starting...", "level", logLevel.String())
}

// GetLogger returns a context logger for the given module
func GetLogger(moduleName string) Logger {
	return log.New("module", moduleName)
}

// LogPanicData logs the recovered panic data with its stack trace and
// returns a UserError carrying the panic message. The stack trace is
// kept in the Debug field.
func LogPanicData(panicData interface{}) error {
	msg := fmt.Sprintf("%v", panicData)
	stackTrace := debug.Stack()
	log.Error("Quickboard panicked", "msg", msg, "stack", string(stackTrace))
	return exceptions.UserError{
		Message: msg,
		Debug:   fmt.Sprintf("%s\n\n%s", msg, stackTrace),
	}
}

// rpcIDKey is the gin context key where the server stores the JSON-RPC id
const rpcIDKey = "rpc_id"

// LogForGin returns a gin middleware that logs requests with the given logger.
//
// Requests with errors are logged at error level, requests answered
// with a 4xx or 5xx status at warning level and others at info level.
// Server-Sent Events streams are logged when they close.
func LogForGin(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// handlers may rewrite the URL
		path := c.Request.URL.Path
		c.Next()

		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
		}
		if id, ok := c.Get(rpcIDKey); ok {
			fields = append(fields, "rpc_id", id)
		}
		ctxLogger := logger.New(fields...)

		switch {
		case len(c.Errors) > 0:
			ctxLogger.Error(c.Errors.String())
		case c.Writer.Status() >= 400:
			ctxLogger.Warn("HTTP Error")
		default:
			ctxLogger.Info("Request served")
		}
	}
}
