// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// captureGlobal swaps the global logger for one writing to a buffer and
// restores the previous state when the test ends.
func captureGlobal(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	prevLogger := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prevLogger)
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	cfg.Output = &buf
	Init(cfg)
	return &buf
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "debug", Format: "json", Timestamp: true})

	Info().Str("run_id", "r1").Msg("pipeline started")

	output := buf.String()
	for _, want := range []string{"pipeline started", `"level":"info"`, `"run_id":"r1"`, `"time":`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %s, got: %s", want, output)
		}
	}
}

func TestInit_LevelFilters(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "warn", Format: "json"})

	Info().Msg("hidden")
	Debug().Msg("hidden too")
	Warn().Msg("visible")
	Error().Err(errors.New("boom")).Msg("failed")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("info/debug should be filtered at warn level: %s", output)
	}
	if !strings.Contains(output, "visible") {
		t.Errorf("warn message missing: %s", output)
	}
	if !strings.Contains(output, `"error":"boom"`) {
		t.Errorf("error field missing: %s", output)
	}
}

func TestInit_ConsoleFormat(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "info", Format: "console"})

	Info().Msg("console message")

	output := buf.String()
	if !strings.Contains(output, "console message") {
		t.Errorf("expected console output, got: %s", output)
	}
	if strings.Contains(output, `"message"`) {
		t.Errorf("console format should not emit JSON: %s", output)
	}
}

func TestInit_Caller(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "info", Format: "json", Caller: true})

	Info().Msg("with caller")

	if !strings.Contains(buf.String(), `"caller":`) {
		t.Errorf("expected caller field, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "info", Format: "json"})

	logger := WithComponent("pipeline")
	logger.Info().Msg("component message")

	if !strings.Contains(buf.String(), `"component":"pipeline"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}

func TestInit_ServiceFields(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "info", Service: "showroom", Version: "1.2.0"})

	Info().Msg("stamped")

	for _, want := range []string{`"service":"showroom"`, `"version":"1.2.0"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %s, got: %s", want, buf.String())
		}
	}
}

func TestInit_DefaultsApplied(t *testing.T) {
	buf := captureGlobal(t, Config{})

	Debug().Msg("below default level")
	Info().Msg("json line")

	output := buf.String()
	if strings.Contains(output, "below default level") {
		t.Errorf("empty level should default to info: %s", output)
	}
	if !strings.Contains(output, `"message":"json line"`) {
		t.Errorf("empty format should default to json: %s", output)
	}
	if strings.Contains(output, `"service"`) {
		t.Errorf("service field should be omitted when unset: %s", output)
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Msg("captured")

	if !strings.Contains(buf.String(), "captured") {
		t.Errorf("expected captured output, got: %s", buf.String())
	}
}
