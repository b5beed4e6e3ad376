// Package extract separates the embedded JSON object of a model answer from the
// narrative text around it.
package extract

import (
	"encoding/json"
	"errors"
	"regexp"

	"TenderScanner/internal/domain"
)

var fencedObject = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

// Split returns the structured payload embedded in answer and the narrative remainder.
//
// A fenced ```json block wins; otherwise the first balanced {...} object is used. When no
// object is found, or it is not valid JSON, payload is nil, narrative is answer unchanged
// and err is an *domain.ExtractionFailure. The narrative is always usable.
func Split(answer string) (payload json.RawMessage, narrative string, err error) {
	if loc := fencedObject.FindStringSubmatchIndex(answer); loc != nil {
		candidate := answer[loc[2]:loc[3]]
		if !json.Valid([]byte(candidate)) {
			return nil, answer, &domain.ExtractionFailure{Reason: "fenced block is not valid JSON", Err: decodeErr(candidate)}
		}
		return json.RawMessage(candidate), answer[:loc[0]] + answer[loc[1]:], nil
	}

	start, end, ok := firstObject(answer)
	if !ok {
		return nil, answer, &domain.ExtractionFailure{Reason: "no JSON object in answer"}
	}
	candidate := answer[start:end]
	if !json.Valid([]byte(candidate)) {
		return nil, answer, &domain.ExtractionFailure{Reason: "embedded object is not valid JSON", Err: decodeErr(candidate)}
	}
	return json.RawMessage(candidate), answer[:start] + answer[end:], nil
}

// firstObject finds the span of the first brace-balanced object, skipping braces inside
// JSON strings.
func firstObject(s string) (start, end int, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if e, found := matchBrace(s, i); found {
			return i, e, true
		}
		return 0, 0, false
	}
	return 0, 0, false
}

func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func decodeErr(candidate string) error {
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return err
	}
	return errors.New("invalid JSON")
}
