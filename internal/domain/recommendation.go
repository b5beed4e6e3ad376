package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Decision is the normalised bid decision.
type Decision string

const (
	DecisionGo            Decision = "GO"
	DecisionGoConditional Decision = "GO_CONDITIONAL"
	DecisionNoGo          Decision = "NO_GO"
	DecisionUnknown       Decision = "UNKNOWN"
)

const scoreEpsilon = 1e-9

// ParseDecision maps the labels the model is asked to use ("GO", "GO (conditional)",
// "NO-GO") and their common spellings onto a Decision.
func ParseDecision(raw string) Decision {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("(", " ", ")", " ", "-", " ", "_", " ", "/", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	switch s {
	case "GO":
		return DecisionGo
	case "GO CONDITIONAL", "CONDITIONAL GO":
		return DecisionGoConditional
	case "NO GO", "NOGO":
		return DecisionNoGo
	default:
		return DecisionUnknown
	}
}

// DecisionForScore maps a total score onto the decision bands.
func DecisionForScore(total float64) Decision {
	switch {
	case total >= 4.5-scoreEpsilon:
		return DecisionGo
	case total >= 3.5-scoreEpsilon:
		return DecisionGoConditional
	default:
		return DecisionNoGo
	}
}

// OptionalFloat is a numeric field of model output. Anything that is not a JSON number
// leaves it unset instead of failing the whole object.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float returns a set OptionalFloat.
func Float(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// UnmarshalJSON never fails.
func (f *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = OptionalFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = OptionalFloat{}
		return nil
	}
	*f = Float(v)
	return nil
}

// MarshalJSON writes null for unset values.
func (f OptionalFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Text is a free-text field of model output. A JSON string is kept as is; objects and
// arrays are flattened to "key: value; ..." text; other scalars keep their JSON text.
type Text string

// UnmarshalJSON never fails.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(flattenJSON(data))
	return nil
}

func flattenJSON(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '{':
		var c Criteria
		_ = c.UnmarshalJSON(raw)
		parts := make([]string, 0, len(c))
		for _, item := range c {
			if item.Value == "" {
				continue
			}
			parts = append(parts, item.Label+": "+item.Value)
		}
		return strings.Join(parts, "; ")
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if v := flattenJSON(item); v != "" {
					parts = append(parts, v)
				}
			}
			return strings.Join(parts, "; ")
		}
	}
	return string(raw)
}

// Scores are the five rubric criteria, each 0, 0.5 or 1.
type Scores struct {
	ThematicAreaFit       OptionalFloat `json:"thematic_area_fit"`
	AvailableExpertise    OptionalFloat `json:"available_expertise"`
	StrategicAlignment    OptionalFloat `json:"strategic_alignment"`
	BudgetTimelineRealism OptionalFloat `json:"budget_timeline_realism"`
	ApplicationProcess    OptionalFloat `json:"application_process"`
}

// UnmarshalJSON leaves every criterion unset when the value is not an object.
func (s *Scores) UnmarshalJSON(data []byte) error {
	type plain Scores
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*s = Scores{}
		return nil
	}
	*s = Scores(p)
	return nil
}

// ScoreEntry is one criterion keyed by its rubric name.
type ScoreEntry struct {
	Key   string
	Score OptionalFloat
}

// Entries lists the criteria in rubric order.
func (s Scores) Entries() []ScoreEntry {
	return []ScoreEntry{
		{Key: "thematic_area_fit", Score: s.ThematicAreaFit},
		{Key: "available_expertise", Score: s.AvailableExpertise},
		{Key: "strategic_alignment", Score: s.StrategicAlignment},
		{Key: "budget_timeline_realism", Score: s.BudgetTimelineRealism},
		{Key: "application_process", Score: s.ApplicationProcess},
	}
}

// Any reports whether at least one criterion was scored.
func (s Scores) Any() bool {
	for _, e := range s.Entries() {
		if e.Score.Valid {
			return true
		}
	}
	return false
}

// Sum adds the five criteria. ok is false unless all five are present.
func (s Scores) Sum() (total float64, ok bool) {
	for _, e := range s.Entries() {
		if !e.Score.Valid {
			return 0, false
		}
		total += e.Score.Value
	}
	return total, true
}

// Criterion is one free-form key criterion, e.g. "risk_level": "Medium".
type Criterion struct {
	Label string
	Value string
}

// Criteria keeps key criteria in the order the model wrote them.
type Criteria []Criterion

// UnmarshalJSON reads an object while preserving key order. Non-string values are kept
// as their JSON text. Anything other than an object yields no criteria.
func (c *Criteria) UnmarshalJSON(data []byte) error {
	*c = nil
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	var out Criteria
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil
		}
		out = append(out, Criterion{Label: key, Value: criterionValue(raw)})
	}
	*c = out
	return nil
}

// MarshalJSON writes the criteria back as an object.
func (c Criteria) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(item.Label)
		val, _ := json.Marshal(item.Value)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func criterionValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return flattenJSON(trimmed)
	}
	return string(trimmed)
}

// Recommendation is the structured go/no-go object the analyzer asks the model for.
// Every field is optional; the model is never trusted to be well formed.
type Recommendation struct {
	Decision    Text          `json:"decision"`
	Confidence  OptionalFloat `json:"confidence"`
	Rationale   Text          `json:"rationale"`
	Scores      Scores        `json:"scores"`
	TotalScore  OptionalFloat `json:"total_score"`
	KeyCriteria Criteria      `json:"key_criteria"`
}

// ParseRecommendation decodes a structured payload. Unknown keys are ignored, badly typed
// numbers are left unset and non-string text is flattened. The error is reserved for a
// payload that is not a JSON object.
func ParseRecommendation(payload []byte) (*Recommendation, error) {
	var rec Recommendation
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode recommendation: %w", err)
	}
	return &rec, nil
}

// NormalizedDecision maps the free-text decision onto a Decision.
func (r *Recommendation) NormalizedDecision() Decision {
	if r == nil {
		return DecisionUnknown
	}
	return ParseDecision(string(r.Decision))
}

// Total returns the stated total score, or the sum of the criteria when the total is
// missing and all five criteria are present.
func (r *Recommendation) Total() (float64, bool) {
	if r == nil {
		return 0, false
	}
	if r.TotalScore.Valid {
		return r.TotalScore.Value, true
	}
	return r.Scores.Sum()
}

// Check reports inconsistencies between the stated total, the criteria and the decision.
// It never corrects them.
func (r *Recommendation) Check() []string {
	if r == nil {
		return nil
	}
	var issues []string
	sum, complete := r.Scores.Sum()
	if complete && r.TotalScore.Valid && math.Abs(sum-r.TotalScore.Value) > scoreEpsilon {
		issues = append(issues, fmt.Sprintf("total_score %.2f does not match criteria sum %.2f", r.TotalScore.Value, sum))
	}
	if total, ok := r.Total(); ok {
		stated := r.NormalizedDecision()
		expected := DecisionForScore(total)
		if stated != DecisionUnknown && stated != expected {
			issues = append(issues, fmt.Sprintf("decision %s disagrees with score band %s (total %.1f)", stated, expected, total))
		}
	}
	return issues
}
