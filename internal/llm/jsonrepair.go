package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// repairStage names where a parse attempt gave up, for diagnostics.
type repairStage string

const (
	stageFail repairStage = "fail"
)

// parseError reports which repair stage a response failed at.
type parseError struct {
	stage repairStage
	cause error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("llm response unparseable at stage %s: %v", e.stage, e.cause)
}

func (e *parseError) Unwrap() error { return e.cause }

// parseConceptBlob runs the repair pipeline: (i)
// parse raw, (ii) strip surrounding prose/code fences and retry, (iii)
// locate the outermost {...} and retry, (iv) give up.
func parseConceptBlob(raw string) (ConceptBlob, error) {
	if blob, err := tryParse(raw); err == nil {
		return blob, nil
	}

	stripped := stripFences(raw)
	if blob, err := tryParse(stripped); err == nil {
		return blob, nil
	}

	if braced, ok := locateOutermostBraces(stripped); ok {
		if blob, err := tryParse(braced); err == nil {
			return blob, nil
		}
	}

	return ConceptBlob{}, &parseError{stage: stageFail, cause: fmt.Errorf("no valid JSON object found")}
}

func tryParse(s string) (ConceptBlob, error) {
	var blob ConceptBlob
	if err := json.Unmarshal([]byte(s), &blob); err != nil {
		return ConceptBlob{}, err
	}
	return blob, nil
}

// stripFences removes a leading/trailing markdown code fence (```json ...
// ``` or ``` ... ```) and any prose preceding or following it.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = rest
	}
	return strings.TrimSpace(s)
}

// locateOutermostBraces returns the substring spanning the first '{' to the
// matching last '}' in the string, if both exist in that order.
func locateOutermostBraces(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
