package zerologger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/logging/zerologger"
)

func TestProviderWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

	provider, err := zerologger.NewProvider(zerologger.Config{
		Level:    "debug",
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	logger := logging.WithFields(provider.GetLogger("donations.editor"), map[string]any{"module": "donations.editor"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"correlation_id": "req-1234"})
	logger = logger.WithContext(ctx)

	logger.Info("editor.save.completed", "page_id", "42", "dangling")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode entry %q: %v", buf.String(), err)
	}

	want := map[string]any{
		"level":          "info",
		"message":        "editor.save.completed",
		"logger":         "donations.editor",
		"module":         "donations.editor",
		"correlation_id": "req-1234",
		"page_id":        "42",
		"field_1":        "dangling",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Fatalf("expected %s=%v, got %v (entry %v)", key, value, entry[key], entry)
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("expected timestamp field, got %v", entry)
	}
}

func TestProviderFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	provider, err := zerologger.NewProvider(zerologger.Config{
		Level:       "info",
		Writer:      &buf,
		NoTimestamp: true,
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	logger := provider.GetLogger("donations.test")
	logger.Debug("ignored.debug")
	logger.Info("included.info")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected only the info entry, got %q", buf.String())
	}
}

func TestProviderFatalDoesNotExit(t *testing.T) {
	var buf bytes.Buffer
	provider, err := zerologger.NewProvider(zerologger.Config{Writer: &buf, NoTimestamp: true})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	provider.GetLogger("").Fatal("fatal.recorded")
	if !strings.Contains(buf.String(), `"level":"fatal"`) {
		t.Fatalf("expected fatal entry, got %q", buf.String())
	}
}

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := zerologger.NewProvider(zerologger.Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleFormatWritesReadableLine(t *testing.T) {
	var buf bytes.Buffer
	provider, err := zerologger.NewProvider(zerologger.Config{Format: "console", Writer: &buf, NoTimestamp: true})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	provider.GetLogger("donations.http").Warn("http.request.failed", "status", 502)
	out := buf.String()
	if !strings.Contains(out, "http.request.failed") || !strings.Contains(out, "status=502") {
		t.Fatalf("unexpected console output %q", out)
	}
}
