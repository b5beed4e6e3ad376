// Package notify renders enriched tenders as Slack messages and publishes them as a thread.
package notify

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"TenderScanner/internal/domain"
)

const (
	defaultBotName      = "BDC Tender Fetcher Bot"
	defaultSummaryLimit = 5000
	rule                = "──────────────────────────────"
)

var blankLines = regexp.MustCompile(`\n{2,}`)

// FormatOptions tunes the rendered text.
type FormatOptions struct {
	BotName      string
	SummaryLimit int
}

func (o FormatOptions) withDefaults() FormatOptions {
	if strings.TrimSpace(o.BotName) == "" {
		o.BotName = defaultBotName
	}
	if o.SummaryLimit <= 0 {
		o.SummaryLimit = defaultSummaryLimit
	}
	return o
}

// Format builds the four message segments for one tender. Missing fields fall back to
// placeholders; it never fails.
func Format(t *domain.EnrichedTender, now time.Time, opts FormatOptions) domain.NotificationBundle {
	opts = opts.withDefaults()
	if t == nil {
		t = domain.NewEnrichedTender(domain.TenderRecord{})
	}
	return domain.NotificationBundle{
		TenderID:       t.ID,
		Header:         formatHeader(t.TenderRecord, now, opts.BotName),
		Summary:        formatSummary(t.Description, opts.SummaryLimit),
		Requirements:   formatRequirements(t.RequirementsSummary),
		Recommendation: formatRecommendation(t.Analysis),
		Attachments:    t.Attachments,
	}
}

func formatHeader(r domain.TenderRecord, now time.Time, botName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Tender Details — %s*\n", orDefault(r.Title, "Untitled Tender"))
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "• 🏢 *Organization:* %s\n", orDefault(r.Organization.Name, "Unknown organization"))
	fmt.Fprintf(&b, "• 🌍 *Country:* %s\n", orDefault(joinNames(r.Locations), "Unspecified"))
	fmt.Fprintf(&b, "• 🎯 *Sector:* %s\n", orDefault(joinNames(r.Sectors), "Unspecified"))
	fmt.Fprintf(&b, "• 💰 *Budget:* %s\n", formatBudget(r.Budget))
	fmt.Fprintf(&b, "• 🤝 *Donor:* %s\n", orDefault(joinNames(r.Donors), "N/A"))
	fmt.Fprintf(&b, "• 📅 *Posted on:* %s\n", orDefault(r.PostedDate, "N/A"))
	fmt.Fprintf(&b, "• ⏰ *Deadline:* %s\n", orDefault(r.Deadline, "N/A"))
	fmt.Fprintf(&b, "• 🚦 *Status:* %s\n", capitalize(orDefault(r.Status.Name, "unknown")))
	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "📧 *Contact:* %s\n", formatContacts(r))
	if url := strings.TrimSpace(r.URL); url != "" {
		fmt.Fprintf(&b, "🔗 *More info:* <%s|Open Tender Page>\n", url)
	}
	fmt.Fprintf(&b, "_Provided by the %s — %s_ 🤖", botName, now.Format("02 Jan 2006"))
	return b.String()
}

func formatBudget(b domain.Budget) string {
	if b.Value == nil || *b.Value == 0 || strings.TrimSpace(b.Currency) == "" {
		return "Not specified"
	}
	return humanize.Commaf(*b.Value) + " " + b.Currency
}

func formatContacts(r domain.TenderRecord) string {
	lines := make([]string, 0, len(r.Contacts))
	for _, c := range r.Contacts {
		name := strings.TrimSpace(c.Name)
		mail := strings.TrimSpace(c.Email)
		switch {
		case name != "":
			lines = append(lines, fmt.Sprintf("%s (%s)", name, mail))
		case mail != "":
			lines = append(lines, mail)
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, ", ")
	}
	if r.Email != "" {
		return r.Email
	}
	return orDefault(r.ContactEmail, "N/A")
}

func formatSummary(description string, limit int) string {
	text := truncate(PlainText(description), limit)
	return "*Summary:*\n" + text + "\n\n"
}

// PlainText strips markup from an HTML fragment, decodes entities and collapses runs of
// blank lines.
func PlainText(fragment string) string {
	text := fragment
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment)); err == nil {
		text = doc.Text()
	}
	text = html.UnescapeString(text)
	text = blankLines.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func formatRequirements(summary string) string {
	return "*Application Requirements:*\n" + orDefault(summary, domain.RequirementsSentinel) + "\n"
}

func formatRecommendation(a domain.Analysis) string {
	rec := a.Recommendation
	if rec == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("📊 *Go/No-Go Analysis*\n")
	decision := strings.ToUpper(strings.TrimSpace(string(rec.Decision)))
	fmt.Fprintf(&b, "• *Decision:* %s %s\n", decisionGlyph(rec.NormalizedDecision()), orDefault(decision, "N/A"))
	confidence := "N/A"
	if rec.Confidence.Valid {
		confidence = fmt.Sprintf("%.0f%%", rec.Confidence.Value*100)
	}
	fmt.Fprintf(&b, "• *Confidence:* %s\n", confidence)
	fmt.Fprintf(&b, "• *Rationale:* %s\n", orDefault(string(rec.Rationale), "No rationale provided."))

	if rec.Scores.Any() {
		b.WriteString("• *Detailed Scores:*\n")
		for _, e := range rec.Scores.Entries() {
			fmt.Fprintf(&b, "   • %s %s: %s\n", scoreGlyph(e.Score), humanizeLabel(e.Key), scoreText(e.Score))
		}
	}
	if total, ok := rec.Total(); ok {
		fmt.Fprintf(&b, "• *Total Score:* *%.1f / 5.0*\n", total)
	}
	if len(rec.KeyCriteria) > 0 {
		b.WriteString("• *Key Criteria:*\n")
		for _, c := range rec.KeyCriteria {
			fmt.Fprintf(&b, "   • %s: %s\n", humanizeLabel(c.Label), c.Value)
		}
	}
	b.WriteString(a.Narrative)
	return b.String()
}

func decisionGlyph(d domain.Decision) string {
	switch d {
	case domain.DecisionGo:
		return "✅"
	case domain.DecisionGoConditional:
		return "⚠️"
	case domain.DecisionNoGo:
		return "❌"
	default:
		return "❓"
	}
}

func scoreGlyph(s domain.OptionalFloat) string {
	if !s.Valid {
		return ":white_circle:"
	}
	switch s.Value {
	case 1:
		return ":large_green_circle:"
	case 0.5:
		return ":large_yellow_circle:"
	case 0:
		return ":red_circle:"
	default:
		return ":white_circle:"
	}
}

func scoreText(s domain.OptionalFloat) string {
	if !s.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

// humanizeLabel turns "budget_timeline_realism" into "Budget timeline realism".
func humanizeLabel(key string) string {
	return capitalize(strings.ReplaceAll(key, "_", " "))
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

func joinNames(items []domain.Named) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if n := strings.TrimSpace(item.Name); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
