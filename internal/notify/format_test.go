package notify

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"TenderScanner/internal/domain"
)

var testNow = time.Date(2025, time.November, 10, 7, 0, 0, 0, time.UTC)

func TestFormatEmptyRecordUsesFallbacks(t *testing.T) {
	t.Parallel()

	bundle := Format(domain.NewEnrichedTender(domain.TenderRecord{}), testNow, FormatOptions{})

	for _, want := range []string{
		"*Tender Details — Untitled Tender*",
		"*Organization:* Unknown organization",
		"*Country:* Unspecified",
		"*Sector:* Unspecified",
		"*Budget:* Not specified",
		"*Donor:* N/A",
		"*Posted on:* N/A",
		"*Deadline:* N/A",
		"*Status:* Unknown",
		"*Contact:* N/A",
		"_Provided by the BDC Tender Fetcher Bot — 10 Nov 2025_",
	} {
		if !strings.Contains(bundle.Header, want) {
			t.Errorf("header lacks %q:\n%s", want, bundle.Header)
		}
	}
	if strings.Contains(bundle.Header, "Open Tender Page") {
		t.Errorf("link rendered without url")
	}
	if !strings.Contains(bundle.Requirements, domain.RequirementsSentinel) {
		t.Errorf("requirements = %q", bundle.Requirements)
	}
	if bundle.Recommendation != "" {
		t.Errorf("recommendation = %q", bundle.Recommendation)
	}
}

func TestFormatHeaderFields(t *testing.T) {
	t.Parallel()

	value := 150000.0
	tender := domain.NewEnrichedTender(domain.TenderRecord{
		ID:           "7",
		Title:        "Endline evaluation",
		Organization: domain.Named{Name: "UNICEF"},
		Locations:    []domain.Named{{Name: "Kenya"}, {Name: "Rwanda"}},
		Sectors:      []domain.Named{{Name: "Health"}},
		Donors:       []domain.Named{{Name: "World Bank"}},
		Budget:       domain.Budget{Value: &value, Currency: "EUR"},
		Status:       domain.Status{Name: "OPEN"},
		Contacts:     []domain.Contact{{Name: "Ana", Email: "ana@example.org"}, {Email: "desk@example.org"}},
		URL:          "https://example.org/t/7",
	})

	header := Format(tender, testNow, FormatOptions{BotName: "Scout"}).Header
	for _, want := range []string{
		"*Country:* Kenya, Rwanda",
		"*Budget:* 150,000 EUR",
		"*Status:* Open",
		"*Contact:* Ana (ana@example.org), desk@example.org",
		"<https://example.org/t/7|Open Tender Page>",
		"_Provided by the Scout — 10 Nov 2025_",
	} {
		if !strings.Contains(header, want) {
			t.Errorf("header lacks %q:\n%s", want, header)
		}
	}
}

func TestFormatContactFallsBackToEmail(t *testing.T) {
	t.Parallel()

	header := Format(domain.NewEnrichedTender(domain.TenderRecord{ContactEmail: "info@example.org"}), testNow, FormatOptions{}).Header
	if !strings.Contains(header, "*Contact:* info@example.org") {
		t.Fatalf("header = %s", header)
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello &amp; welcome</p>", "Hello & welcome"},
		{"a\n\n\n\nb", "a\nb"},
		{"&amp;lt;tag&amp;gt;", "<tag>"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSummaryTruncates(t *testing.T) {
	t.Parallel()

	tender := domain.NewEnrichedTender(domain.TenderRecord{Description: strings.Repeat("ü", 30)})
	summary := Format(tender, testNow, FormatOptions{SummaryLimit: 10}).Summary

	body := strings.TrimSuffix(strings.TrimPrefix(summary, "*Summary:*\n"), "\n\n")
	if body != strings.Repeat("ü", 10)+"..." {
		t.Fatalf("summary body = %q", body)
	}
	if !utf8.ValidString(summary) {
		t.Fatal("summary is not valid utf-8")
	}
}

func TestFormatRecommendation(t *testing.T) {
	t.Parallel()

	tender := domain.NewEnrichedTender(domain.TenderRecord{ID: "1"})
	tender.Analysis = domain.Analysis{
		Narrative: "Partner needed.",
		Recommendation: &domain.Recommendation{
			Decision:   "GO (conditional)",
			Confidence: domain.Float(0.82),
			Scores: domain.Scores{
				ThematicAreaFit:       domain.Float(1),
				AvailableExpertise:    domain.Float(1),
				StrategicAlignment:    domain.Float(0.5),
				BudgetTimelineRealism: domain.Float(0.5),
				ApplicationProcess:    domain.Float(0.5),
			},
			KeyCriteria: domain.Criteria{{Label: "risk_level", Value: "Medium"}, {Label: "geographic_fit", Value: "Yes"}},
		},
	}

	got := Format(tender, testNow, FormatOptions{}).Recommendation
	for _, want := range []string{
		"*Decision:* ⚠️ GO (CONDITIONAL)",
		"*Confidence:* 82%",
		"*Rationale:* No rationale provided.",
		":large_green_circle: Thematic area fit: 1",
		":large_yellow_circle: Budget timeline realism: 0.5",
		"*Total Score:* *3.5 / 5.0*",
		"• Risk level: Medium",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("recommendation lacks %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Risk level") > strings.Index(got, "Geographic fit") {
		t.Errorf("key criteria reordered:\n%s", got)
	}
	if !strings.HasSuffix(got, "Partner needed.") {
		t.Errorf("narrative not appended:\n%s", got)
	}
}

func TestFormatRecommendationUnknownDecision(t *testing.T) {
	t.Parallel()

	tender := domain.NewEnrichedTender(domain.TenderRecord{})
	tender.Analysis.Recommendation = &domain.Recommendation{Decision: "maybe", Scores: domain.Scores{ThematicAreaFit: domain.Float(0.75)}}

	got := Format(tender, testNow, FormatOptions{}).Recommendation
	for _, want := range []string{"❓ MAYBE", "*Confidence:* N/A", ":white_circle: Thematic area fit: 0.75", ":white_circle: Application process: N/A"} {
		if !strings.Contains(got, want) {
			t.Errorf("recommendation lacks %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Total Score") {
		t.Errorf("total rendered without complete scores:\n%s", got)
	}
}

func TestHumanizeLabel(t *testing.T) {
	t.Parallel()

	if got := humanizeLabel("budget_timeline_realism"); got != "Budget timeline realism" {
		t.Fatalf("got %q", got)
	}
}
