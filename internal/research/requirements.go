package research

import (
	"context"
	"fmt"
	"strings"

	"TenderScanner/internal/domain"
	"TenderScanner/internal/ports"
)

const requirementsPrompt = `You are an expert in public tenders. Starting from the tender page %s,
search the organization's website and any related sources to identify **submission requirements**,
including eligibility criteria, required documentation, technical and financial qualifications, timelines, and deadlines.

Summarize your findings in concise bullet points.

At the end, provide the most relevant and authoritative link(s)
where these requirements can be verified, formatted as Slack links in the form ` + "`<{url}|display name>`" + `.

Format your response as:

Requirements:
- <requirement 1>
- <requirement 2>
...

Source(s):
<https://example.com|Organization Website>`

// RequirementResearcher asks the web-search model for a tender's submission requirements.
type RequirementResearcher struct {
	llm ports.LLMClient
}

var _ ports.RequirementResearcher = (*RequirementResearcher)(nil)

// NewRequirementResearcher wires the model client.
func NewRequirementResearcher(llm ports.LLMClient) *RequirementResearcher {
	return &RequirementResearcher{llm: llm}
}

// Research returns the model's markdown answer unchanged.
func (r *RequirementResearcher) Research(ctx context.Context, tenderURL string) (string, error) {
	tenderURL = strings.TrimSpace(tenderURL)
	if tenderURL == "" {
		return "", &domain.ValidationError{Field: "tender url", Reason: "is empty"}
	}
	if r.llm == nil {
		return "", fmt.Errorf("requirement research: no llm client configured")
	}

	answer, err := r.llm.Complete(ctx, fmt.Sprintf(requirementsPrompt, tenderURL))
	if err != nil {
		return "", fmt.Errorf("requirement research: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
