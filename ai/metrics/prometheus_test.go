package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExporter(t *testing.T) {
	exporter := NewExporter(DefaultConfig())

	t.Run("RecordMessage", func(t *testing.T) {
		exporter.RecordMessage("anxious", "venting", "listen", 200*time.Microsecond)
		exporter.RecordMessage("neutral", "sharing", "connect", 150*time.Microsecond)
		exporter.RecordCrisis()
		exporter.SetActiveSessions(3)
	})

	t.Run("RecordWisdom", func(t *testing.T) {
		exporter.RecordWisdom("guide", "impermanence")
		exporter.RecordWisdom("empower", "right-action")
	})

	t.Run("RecordSuggestion", func(t *testing.T) {
		exporter.RecordSuggestion("viyoga", "ardha")
		exporter.RecordSuggestion("kiaan", "journey")
	})

	t.Run("RecordMerge", func(t *testing.T) {
		exporter.RecordMerge(3*time.Millisecond, nil)
		exporter.RecordMerge(5*time.Millisecond, http.ErrHandlerTimeout)
	})

	t.Run("RecordHTTPRequest", func(t *testing.T) {
		exporter.RecordHTTPRequest("POST", "/api/v1/chat/:session/messages", 200, 2*time.Millisecond)
		exporter.RecordHTTPRequest("GET", "/healthz", 200, 100*time.Microsecond)
	})
}

func TestExporterHandler(t *testing.T) {
	exporter := NewExporter(DefaultConfig())

	exporter.RecordMessage("anxious", "venting", "listen", 200*time.Microsecond)
	exporter.RecordSuggestion("viyoga", "ardha")
	exporter.RecordMerge(time.Millisecond, nil)

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()

	exporter.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, metric := range []string{
		"mindvibe_engine_messages_total",
		"mindvibe_engine_suggestions_total",
		"mindvibe_engine_profile_merges_total",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("expected %s in output", metric)
		}
	}
}

func TestExporterCustomRegistry(t *testing.T) {
	exporter := NewExporter(Config{})
	exporter.RecordMessage("sad", "sharing", "connect", 50*time.Microsecond)

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()

	exporter.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func BenchmarkExporter(b *testing.B) {
	exporter := NewExporter(DefaultConfig())

	b.Run("RecordMessage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			exporter.RecordMessage("anxious", "venting", "listen", 200*time.Microsecond)
		}
	})

	b.Run("RecordSuggestion", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			exporter.RecordSuggestion("viyoga", "ardha")
		}
	})
}
