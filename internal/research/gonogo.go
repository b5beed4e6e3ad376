package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"TenderScanner/internal/config"
	"TenderScanner/internal/domain"
	"TenderScanner/internal/extract"
	"TenderScanner/internal/ports"
)

const goNoGoPrompt = `You are an expert analyst on *{{bidder}}'s Business Development (BD) team*.

{{bidder}} operates across *{{countries}}*{{secondary}}.

Your task is to assess whether {{bidder}} should bid on the following opportunity.

Tender information:
{{tender}}

---------------------------------------------------------
OBJECTIVE
---------------------------------------------------------
Make a structured analysis that mimics the decision process used by {{bidder}}'s BD team.
You must balance *strategic alignment, feasibility, and risk awareness*.

Use sound judgment and a conservative approach: if critical information is missing,
mark the corresponding criterion as "Maybe (0.5)" or "No (0)".

---------------------------------------------------------
DECISION FRAMEWORK
---------------------------------------------------------
Rank each of the following criteria using the scoring system:
- Yes = 1
- Maybe = 0.5
- No = 0

For each, provide a one-sentence rationale, to be included in the final rationale within the json output.

1. **Thematic Area Fit**
   - Does the opportunity align with {{bidder}}'s research areas ({{areas}})?
   - Is it feasible for the country teams involved?

2. **Available Expertise**
   - Does {{bidder}} have the in-house skills and experience required?
   - Would we need to partner to be competitive?

3. **Strategic Alignment**
   - Is the project strategic (e.g., high-value client, strengthens our portfolio, builds credibility in a growth sector)?
   - Does it fit our medium-term BD priorities?

4. **Budget & Timeline Realism**
   - Is the budget realistic given the expected scope of work?
   - Is the timeline feasible for a strong submission?
   - Flag red flags (e.g., budget <{{minBudget}}, local currency budgets, very short deadlines).

5. **Application Process / LOE**
   - Do we have sufficient time and internal capacity to prepare the proposal or EOI?
   - Note any red flags: pay-to-apply, hard-copy submissions, or unclear requirements.

---------------------------------------------------------
RISK-INFORMED DECISIONING
---------------------------------------------------------
You must weigh:
(a) Fit (sector, methods, geography),
(b) Eligibility/Compliance (e.g., registration, past performance),
(c) Budget & timeline realism, and
(d) Risk level.

Guidelines:
- If Eligibility = No or Risk = High with no credible mitigation, recommend *NO-GO*.
- If the opportunity is strong but depends on solvable issues (e.g., needing a partner, clarifying scope), recommend *GO (conditional)*.
- Otherwise, recommend *GO*.

---------------------------------------------------------
SCORING & DECISION LOGIC
---------------------------------------------------------
Compute:
- total_score = sum of all five criteria (max = 5).
- Map to decisions:
  - total_score >= 4.5: "GO"
  - 3.5 <= total_score < 4.5: "GO (conditional)"
  - total_score < 3.5: "NO-GO"

Confidence:
- Derive from how consistent and well-supported the evidence is.
- High confidence (>=0.85) if information is clear and aligns strongly with {{bidder}}'s profile.
- Medium (0.6-0.8) if partial or uncertain data.
- Low (<0.6) if key information is missing.

---------------------------------------------------------
OUTPUT FORMAT
---------------------------------------------------------
Return a **single JSON object** inside a ` + "```json" + ` fenced block, with this structure:

{
  "decision": "GO (conditional)",
  "confidence": 0.82,
  "rationale": "The opportunity fits our methods and sectors but budget and timeline are tight.",
  "scores": {
    "thematic_area_fit": 1,
    "available_expertise": 1,
    "strategic_alignment": 0.5,
    "budget_timeline_realism": 0.5,
    "application_process": 0.5
  },
  "total_score": 3.5,
  "key_criteria": {
    "geographic_fit": "Yes",
    "sector_fit": "Yes",
    "eligibility": "Partial",
    "risk_level": "Medium"
  }
}
"decision" must be one of GO | GO (conditional) | NO-GO.
Include a short markdown text in addition to the JSON object, it will be parsed programmatically.

Notes:
- Be explicit in rationale about any uncertainties or assumptions.
- Use online search to assess donor/organization reputation.
- Be concise but clear: this output feeds directly into Slack.`

// GoNoGoAnalyzer scores a tender against the bid rubric.
type GoNoGoAnalyzer struct {
	llm        ports.LLMClient
	bidder     config.BidderConfig
	charBudget int
	logger     *slog.Logger
}

var _ ports.BidAnalyzer = (*GoNoGoAnalyzer)(nil)

// NewGoNoGoAnalyzer wires the model client and bidder profile. charBudget bounds the
// serialized tender embedded in the prompt.
func NewGoNoGoAnalyzer(llm ports.LLMClient, bidder config.BidderConfig, charBudget int, logger *slog.Logger) *GoNoGoAnalyzer {
	return &GoNoGoAnalyzer{llm: llm, bidder: bidder, charBudget: charBudget, logger: logger}
}

// Analyze returns the structured recommendation when the model produced one, plus its
// narrative. Only a failed model call is an error.
func (a *GoNoGoAnalyzer) Analyze(ctx context.Context, tender *domain.EnrichedTender) (domain.Analysis, error) {
	if tender == nil {
		return domain.Analysis{}, &domain.ValidationError{Field: "tender", Reason: "is nil"}
	}
	if a.llm == nil {
		return domain.Analysis{}, fmt.Errorf("go/no-go analysis: no llm client configured")
	}

	answer, err := a.llm.Complete(ctx, a.prompt(tender))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("go/no-go analysis: %w", err)
	}

	payload, narrative, err := extract.Split(answer)
	analysis := domain.Analysis{Narrative: strings.TrimSpace(narrative)}
	if err != nil {
		a.warn("go/no-go answer has no structured payload", "tender_id", tender.ID, "error", err)
		return analysis, nil
	}

	rec, err := domain.ParseRecommendation(payload)
	if err != nil {
		a.warn("go/no-go payload rejected", "tender_id", tender.ID,
			"error", &domain.ExtractionFailure{Reason: "payload could not be decoded", Err: err})
		analysis.Narrative = strings.TrimSpace(answer)
		return analysis, nil
	}
	for _, issue := range rec.Check() {
		a.warn("go/no-go recommendation inconsistent", "tender_id", tender.ID, "issue", issue)
	}
	analysis.Recommendation = rec
	return analysis, nil
}

func (a *GoNoGoAnalyzer) prompt(tender *domain.EnrichedTender) string {
	secondary := ""
	if a.bidder.SecondaryCountries != "" {
		secondary = ", and occasionally *" + a.bidder.SecondaryCountries + "*"
	}
	return strings.NewReplacer(
		"{{bidder}}", a.bidder.Name,
		"{{countries}}", strings.Join(a.bidder.OperatingCountries, ", "),
		"{{secondary}}", secondary,
		"{{areas}}", a.bidder.ResearchAreas,
		"{{minBudget}}", a.bidder.MinimumBudget,
		"{{tender}}", SerializeTender(tender, a.charBudget),
	).Replace(goNoGoPrompt)
}

// tenderContext is what the model sees of a tender: the listing record plus researched
// requirements. Downloaded documents are left out.
type tenderContext struct {
	domain.TenderRecord
	RequirementsSummary string `json:"requirements_summary,omitempty"`
}

// SerializeTender renders the tender as JSON and truncates it to at most budget runes.
func SerializeTender(tender *domain.EnrichedTender, budget int) string {
	raw, err := json.Marshal(tenderContext{
		TenderRecord:        tender.TenderRecord,
		RequirementsSummary: tender.RequirementsSummary,
	})
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", tender.TenderRecord))
	}
	return truncateRunes(string(raw), budget)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func (a *GoNoGoAnalyzer) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
