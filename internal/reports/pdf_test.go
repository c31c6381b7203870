package reports

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestSummaryPDF(t *testing.T) {
	out, err := SummaryPDF(sampleData())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
}

func TestSummaryPDFEmptyHistory(t *testing.T) {
	data := sampleData()
	data.Activities = nil
	out, err := SummaryPDF(data)
	if err != nil {
		t.Fatalf("render with no activities: %v", err)
	}
	if len(out) == 0 {
		t.Errorf("empty output")
	}
}

func TestSummaryPDFValidation(t *testing.T) {
	data := sampleData()
	data.Activities[0].ActivityDate = time.Time{}
	_, err := SummaryPDF(data)
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("got %v, want *RenderError", err)
	}
	if rerr.Format != "pdf" {
		t.Errorf("format = %q, want pdf", rerr.Format)
	}
}
