package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics, update func()) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler(update).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.IncReceived()
	m.IncReceived()
	m.IncRejected("too_large")
	m.IncFinished("DELIVERED")
	m.IncTranslationFallback()
	m.ObserveStage("transcribe", 3*time.Second)

	body := scrape(t, m, func() { m.SetQueueDepth(4) })

	for _, want := range []string{
		"vtbot_jobs_received_total 2",
		`vtbot_jobs_rejected_total{reason="too_large"} 1`,
		`vtbot_jobs_finished_total{state="DELIVERED"} 1`,
		"vtbot_translation_fallbacks_total 1",
		`vtbot_stage_duration_seconds_count{stage="transcribe"} 1`,
		"vtbot_queue_depth 4",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q\n%s", want, body)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncReceived()
	m.IncRejected("busy")
	m.IncFinished("FAILED")
	m.IncTranslationFallback()
	m.ObserveStage("mux", time.Second)
	m.SetQueueDepth(1)
}
