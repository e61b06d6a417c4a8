package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// extractTranslationResults pulls a translation array out of a model
// response that may carry prose, code fences, or an object wrapper
// around the actual JSON.
func extractTranslationResults(response string) ([]TranslationResult, error) {
	cleaned := fixInvalidEscapes(cleanJSONResponse(response))

	var direct []TranslationResult
	if err := json.Unmarshal([]byte(cleaned), &direct); err == nil && validateResults(direct) {
		return direct, nil
	}

	// An array embedded in surrounding prose. The decoder stops at the
	// end of the first JSON value, so trailing chatter is fine.
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(cleaned[i:]))
		var candidate []TranslationResult
		if err := dec.Decode(&candidate); err == nil && validateResults(candidate) {
			return candidate, nil
		}
	}

	// An object wrapping the array under some key.
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(cleaned[i:]))
		var wrapper map[string]json.RawMessage
		if err := dec.Decode(&wrapper); err == nil {
			if results, ok := resultsFromWrapper(wrapper); ok {
				return results, nil
			}
		}
	}

	return nil, fmt.Errorf("no translation array found in response")
}

// resultsFromWrapper tries the values of a wrapper object, well-known
// keys first, recursing into nested objects.
func resultsFromWrapper(wrapper map[string]json.RawMessage) ([]TranslationResult, bool) {
	preferred := []string{"results", "translations", "data", "items"}
	for _, key := range preferred {
		if raw, ok := wrapper[key]; ok {
			if results, ok := resultsFromRaw(raw); ok {
				return results, true
			}
		}
	}

	keys := make([]string, 0, len(wrapper))
	for key := range wrapper {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if results, ok := resultsFromRaw(wrapper[key]); ok {
			return results, true
		}
	}
	return nil, false
}

func resultsFromRaw(raw json.RawMessage) ([]TranslationResult, bool) {
	var results []TranslationResult
	if err := json.Unmarshal(raw, &results); err == nil && validateResults(results) {
		return results, true
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		return resultsFromWrapper(nested)
	}
	return nil, false
}

// validateResults reports whether a decoded array carries any actual
// translated text rather than a coincidentally decodable value.
func validateResults(results []TranslationResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, res := range results {
		if strings.TrimSpace(res.Text) != "" {
			return true
		}
	}
	return false
}

// fixInvalidEscapes doubles backslashes that start an escape sequence
// JSON does not know. Subtitle line breaks like \N leak into model
// output and would otherwise fail the whole parse. Valid escapes are
// left alone.
func fixInvalidEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			b.WriteString(`\\`)
			break
		}
		next := s[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			b.WriteByte(c)
			b.WriteByte(next)
		default:
			b.WriteString(`\\`)
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	// remove ```json and ``` markers
	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	s = strings.TrimSpace(s)

	return s
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
