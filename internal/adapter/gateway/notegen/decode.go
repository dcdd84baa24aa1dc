package notegen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
)

type generatedDocument struct {
	Title  string                  `json:"title"`
	Blocks []output.GeneratedBlock `json:"blocks"`
}

// DecodeResult interprets raw model output as a {title, blocks} document.
// It never fails: anything that does not decode into at least one block is Malformed.
func DecodeResult(raw string) output.GenerationResult {
	body := extractJSON(raw)
	if body == "" {
		return output.Malformed{Raw: raw, Reason: "response contains no JSON object"}
	}

	var doc generatedDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return output.Malformed{Raw: raw, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if len(doc.Blocks) == 0 {
		return output.Malformed{Raw: raw, Reason: "document has no blocks"}
	}
	return output.Parsed{Title: strings.TrimSpace(doc.Title), Blocks: doc.Blocks}
}

// extractJSON strips a markdown fence and any prose around the outermost object
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:] // drop the language tag line
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
