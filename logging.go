// Copyright 2012 James Cooper. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package beecp

import (
	"fmt"
	"log/slog"
)

// Logger is the type that Pool uses to log connection lifecycle and
// idle-scan events. See Pool.TraceOn.
type Logger interface {
	Printf(format string, v ...interface{})
}

// SlogLogger implements Logger using slog.
type SlogLogger struct {
	logger *slog.Logger
	attrs  []slog.Attr
}

// NewSlogLogger creates a new SlogLogger with optional attributes.
func NewSlogLogger(logger *slog.Logger, attrs ...slog.Attr) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{
		logger: logger,
		attrs:  attrs,
	}
}

// Printf implements Logger using structured logging.
func (l *SlogLogger) Printf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	attrs := append(l.attrs, slog.String("event", msg))
	l.logger.LogAttrs(nil, slog.LevelDebug, "beecp_trace", attrs...)
}

// TraceOn turns on debug logging for this Pool: connection creation and
// removal, idle-scan snapshots, and failed liveness checks are all sent to
// logger. If prefix is non-empty it is written to the front of
// every logged line, which can help filter log output from one pool among
// several.
//
// Note that the stdlib log.Logger type satisfies Logger directly; adapters
// can easily be written for other logging packages.
//
// Example using slog:
//
//	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
//	pool.TraceOn("[beecp]", beecp.NewSlogLogger(logger))
func (p *Pool) TraceOn(prefix string, logger Logger) {
	p.logger.Store(&loggerBox{logger: logger, prefix: prefix})
}

// TraceOff turns off tracing. It is idempotent.
func (p *Pool) TraceOff() {
	p.logger.Store(&loggerBox{})
}

// loggerBox lets Pool swap its active logger atomically without requiring
// Logger implementations themselves to be comparable or nil-safe.
type loggerBox struct {
	logger Logger
	prefix string
}

func (p *Pool) tracef(format string, v ...interface{}) {
	box, _ := p.logger.Load().(*loggerBox)
	if box == nil || box.logger == nil {
		return
	}
	if box.prefix != "" {
		box.logger.Printf(box.prefix+" "+format, v...)
		return
	}
	box.logger.Printf(format, v...)
}
