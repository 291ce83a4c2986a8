package transcript

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Models asked for strict JSON still wrap it in markdown fences, truncate
// long word arrays mid-stream, or answer with loose prose. Decode applies
// the same repairs before parsing, and ExtractText is the last-resort
// recovery of just the transcription text.

// StripFences removes a surrounding markdown code fence, if any
func StripFences(s string) string {
	if strings.Contains(s, "```json") {
		s = strings.SplitN(s, "```json", 2)[1]
		s = strings.SplitN(s, "```", 2)[0]
		return strings.TrimSpace(s)
	}
	if strings.Contains(s, "```") {
		parts := strings.Split(s, "```")
		if len(parts) >= 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	return s
}

// CloseTruncated attempts to close a JSON object that was cut off mid-stream
func CloseTruncated(s string) string {
	if strings.Count(s, "{") <= strings.Count(s, "}") {
		return s
	}

	// An unterminated words array loses everything after its last complete
	// entry; cut back to the opening bracket and close it.
	if strings.Contains(s, `"words"`) && !strings.Contains(s, "]") {
		if last := strings.LastIndex(s, "["); last != -1 {
			s = s[:last] + "]"
		}
	}

	s = strings.TrimRight(s, " \t\r\n")
	s = strings.TrimRight(s, ",")
	return s + "\n}"
}

// Decode parses model output into a Transcript, repairing fenced and
// truncated JSON along the way.
func Decode(content string) (*Transcript, error) {
	cleaned := CloseTruncated(StripFences(content))

	var t Transcript
	if err := json.Unmarshal([]byte(cleaned), &t); err != nil {
		return nil, fmt.Errorf("transcription response is not valid JSON: %w", err)
	}
	return &t, nil
}

var (
	textFieldRegexp   = regexp.MustCompile(`(?s)"text"\s*:\s*"([^"\\]*(?:\\.[^"\\]*)*)"`)
	controlCharRegexp = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	jsonHeadRegexp    = regexp.MustCompile(`^\s*\{\s*"text"\s*:\s*"`)
	jsonTailRegexp    = regexp.MustCompile(`"\s*\}\s*$`)
)

// ExtractText pulls the transcription text out of a response that could not
// be parsed as JSON.
func ExtractText(content string) string {
	if m := textFieldRegexp.FindStringSubmatch(content); m != nil {
		text := m[1]
		text = strings.ReplaceAll(text, `\"`, `"`)
		text = strings.ReplaceAll(text, `\n`, " ")
		text = strings.ReplaceAll(text, `\t`, " ")
		return text
	}

	// No parseable text field; strip the JSON shell and control characters
	// and treat what remains as the text.
	text := controlCharRegexp.ReplaceAllString(content, "")
	text = jsonHeadRegexp.ReplaceAllString(text, "")
	text = jsonTailRegexp.ReplaceAllString(text, "")
	return strings.Trim(strings.TrimSpace(text), `"`)
}
