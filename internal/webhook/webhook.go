package webhook

import "context"

// ReportPayload is the JSON body posted to the report webhook.
type ReportPayload struct {
	ReportType string `json:"report_type"`
	Date       string `json:"date"`
	Body       string `json:"body"`
}

type Sender interface {
	SendReport(ctx context.Context, payload ReportPayload) error
}
