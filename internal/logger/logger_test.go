package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTextLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf)
	if err := SetLevelString("info"); err != nil {
		t.Fatal(err)
	}

	Named("loader").Info(context.Background(), "snapshot fetched", String("scope", "players/2024"), Int("rows", 12))
	out := buf.String()
	for _, want := range []string{"snapshot fetched", "component=loader", "scope=players/2024", "rows=12"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf)
	if err := SetLevelString("warn"); err != nil {
		t.Fatal(err)
	}
	defer SetLevelString("info")

	l := Get()
	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown", Error(errors.New("boom")))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "boom") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestDebugCarriesSource(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf)
	if err := SetLevelString("debug"); err != nil {
		t.Fatal(err)
	}
	defer SetLevelString("info")

	Get().Debug(context.Background(), "trace")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Errorf("debug record should carry the call site: %s", buf.String())
	}
}

func TestSetLevelStringRejectsUnknown(t *testing.T) {
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	InitJSON(&buf)
	Get().Error(context.Background(), "fail", Bool("stale", true))
	if !strings.Contains(buf.String(), `"stale":true`) {
		t.Errorf("json output missing field: %s", buf.String())
	}
	Init(nil)
}
