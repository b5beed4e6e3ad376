package domain

import (
	"encoding/json"
	"testing"
)

func TestTenderRecordDecodesListingPayload(t *testing.T) {
	t.Parallel()

	raw := `{
	  "id": 1234567,
	  "name": "Baseline survey",
	  "organization": {"id": 9, "name": "UNICEF"},
	  "donors": [{"id": 1, "name": "EU"}],
	  "amount": {"value": 250000, "currency": "EUR"},
	  "status": {"id": 3, "name": "open"},
	  "documents": [{"id": "77", "fileName": "tor.pdf"}]
	}`

	var rec TenderRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ID != "1234567" {
		t.Fatalf("id = %q", rec.ID)
	}
	if rec.Status.Name != "open" || rec.Status.ID != "3" {
		t.Fatalf("status = %#v", rec.Status)
	}
	if rec.Budget.Value == nil || *rec.Budget.Value != 250000 {
		t.Fatalf("budget = %#v", rec.Budget)
	}
	if rec.Documents[0].ID != "77" {
		t.Fatalf("document id = %q", rec.Documents[0].ID)
	}

	var labelled TenderRecord
	if err := json.Unmarshal([]byte(`{"id":"abc","status":"forecast"}`), &labelled); err != nil {
		t.Fatalf("unmarshal label status: %v", err)
	}
	if labelled.Status.Name != "forecast" || labelled.ID != "abc" {
		t.Fatalf("unexpected record: %#v", labelled)
	}
}

func TestNewEnrichedTenderDefaults(t *testing.T) {
	t.Parallel()

	e := NewEnrichedTender(TenderRecord{ID: "1"})
	if e.RequirementsSummary != RequirementsSentinel {
		t.Fatalf("requirements = %q", e.RequirementsSummary)
	}
	if e.Analysis.Recommendation != nil || len(e.Attachments) != 0 {
		t.Fatal("enrichment fields should start empty")
	}
}
