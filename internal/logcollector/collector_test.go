package logcollector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/je9pel/observatory/internal/envelope"
)

func TestCollector_Handle_WritesPerSourceLogFile(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	defer c.Close()

	env := &envelope.Envelope{
		Timestamp:   time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC),
		Source:      "tracker",
		MessageType: envelope.MessageTypeTelemetry,
		Kind:        "status",
	}

	if err := c.Handle(context.Background(), env); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "tracker.log"))
	if err != nil {
		t.Fatalf("reading tracker.log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "tracker") || !strings.Contains(line, "status") {
		t.Errorf("log line = %q, want it to mention source and kind", line)
	}
	if !strings.Contains(line, "2026-07-30 12:00:00") {
		t.Errorf("log line = %q, want a formatted timestamp", line)
	}
}

func TestCollector_Handle_SeparatesSourcesIntoDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	defer c.Close()

	for _, source := range []string{"tracker", "scheduler"} {
		env := &envelope.Envelope{Timestamp: time.Now(), Source: source, MessageType: envelope.MessageTypeTelemetry, Kind: "status"}
		if err := c.Handle(context.Background(), env); err != nil {
			t.Fatalf("Handle(%s) returned error: %v", source, err)
		}
	}
	c.Close()

	for _, source := range []string{"tracker", "scheduler"} {
		if _, err := os.Stat(filepath.Join(dir, source+".log")); err != nil {
			t.Errorf("expected a log file for %s: %v", source, err)
		}
	}
}

func TestCollector_WriterFor_ReusesLoggerPerSource(t *testing.T) {
	c := New(t.TempDir())
	defer c.Close()

	w1 := c.writerFor("tracker")
	w2 := c.writerFor("tracker")
	if w1 != w2 {
		t.Error("expected writerFor to reuse the same lumberjack.Logger for a repeated source")
	}
}
