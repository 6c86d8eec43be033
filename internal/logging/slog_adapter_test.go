// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBufferedSlog(t *testing.T, level zerolog.Level) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(level)
	return slog.New(NewSlogHandlerWithLogger(logger)), &buf
}

func TestSlogHandler_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*slog.Logger)
		level string
	}{
		{"debug", func(l *slog.Logger) { l.Debug("m") }, `"level":"debug"`},
		{"info", func(l *slog.Logger) { l.Info("m") }, `"level":"info"`},
		{"warn", func(l *slog.Logger) { l.Warn("m") }, `"level":"warn"`},
		{"error", func(l *slog.Logger) { l.Error("m") }, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slogger, buf := newBufferedSlog(t, zerolog.TraceLevel)
			tt.log(slogger)
			if !strings.Contains(buf.String(), tt.level) {
				t.Errorf("expected %s in output: %s", tt.level, buf.String())
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	handler := NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))
	ctx := context.Background()

	if handler.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be disabled for a warn-level logger")
	}
	if !handler.Enabled(ctx, slog.LevelError) {
		t.Error("error should be enabled for a warn-level logger")
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	slogger, buf := newBufferedSlog(t, zerolog.TraceLevel)

	slogger.Info("attrs",
		"service", "pipeline",
		"restarts", 3,
		"ratio", 0.5,
		"healthy", true,
		"backoff", 2*time.Second,
		"err", errors.New("boom"),
	)

	output := buf.String()
	for _, want := range []string{
		`"service":"pipeline"`,
		`"restarts":3`,
		`"ratio":0.5`,
		`"healthy":true`,
		`"backoff":2000`,
		`"err":"boom"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroups(t *testing.T) {
	slogger, buf := newBufferedSlog(t, zerolog.TraceLevel)

	slogger.With("supervisor", "root").
		WithGroup("event").
		WithGroup("service").
		Info("restart", "name", "pipeline-service", slog.Group("timing", "attempt", 2))

	output := buf.String()
	for _, want := range []string{
		`"supervisor":"root"`,
		`"event.service.name":"pipeline-service"`,
		`"event.service.timing.attempt":2`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandler_WithGroupEmptyName(t *testing.T) {
	handler := NewSlogHandlerWithLogger(zerolog.Nop())
	if got := handler.WithGroup(""); got != handler {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestNewSlogLogger(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "info", Format: "json"})

	NewSlogLogger().Info("from slog", "k", "v")

	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("expected slog output through global logger: %s", buf.String())
	}
}
