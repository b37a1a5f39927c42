package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferret9/worklogbot/internal/webhook"
)

func TestSendReport_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	err := sender.SendReport(context.Background(), webhook.ReportPayload{ReportType: "daily"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendReport_Success(t *testing.T) {
	var got webhook.ReportPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendReport(context.Background(), webhook.ReportPayload{
		ReportType: "daily",
		Date:       "2025-03-03",
		Body:       "report body",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.ReportType != "daily" {
		t.Fatalf("unexpected report type: %s", got.ReportType)
	}
	if got.Date != "2025-03-03" {
		t.Fatalf("unexpected date: %s", got.Date)
	}
	if got.Body != "report body" {
		t.Fatalf("unexpected body: %s", got.Body)
	}
}

func TestSendReport_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendReport(context.Background(), webhook.ReportPayload{ReportType: "weekly"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
