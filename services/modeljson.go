package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidShape marks output that parsed as JSON but is not the expected
// array/object form (e.g. Gemini returned an object where an array was asked).
var ErrInvalidShape = errors.New("model output is valid JSON but not the expected shape")

// ParseError reports model output that could not be coerced into the
// expected JSON shape. RawText keeps the original output for diagnostics;
// nothing is ever guessed or defaulted on a parse failure.
type ParseError struct {
	RawText string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// stripCodeFences removes the ```json / ``` markers Gemini wraps around
// output despite being told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// DecodeModelArray parses raw model output into v, which must unmarshal from
// a JSON array. Tries the text as-is, then with Markdown fences stripped.
func DecodeModelArray(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	clean := stripCodeFences(raw)
	err := json.Unmarshal([]byte(clean), v)
	if err == nil {
		return nil
	}

	// Valid JSON of the wrong shape is a different failure than garbage.
	var probe any
	if json.Unmarshal([]byte(clean), &probe) == nil {
		return ErrInvalidShape
	}
	return &ParseError{RawText: raw, Err: err}
}

// DecodeModelObject parses raw model output into v, which must unmarshal
// from a JSON object. Beyond fence stripping it also accepts an object
// embedded in surrounding prose by cutting from the first '{' to the
// last '}' (summary responses sometimes arrive with commentary around them).
func DecodeModelObject(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	firstErr := json.Unmarshal([]byte(trimmed), v)
	if firstErr == nil {
		return nil
	}

	clean := stripCodeFences(raw)
	if err := json.Unmarshal([]byte(clean), v); err == nil {
		return nil
	}

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(clean[start:end+1]), v); err == nil {
			return nil
		}
	}

	var probe any
	if json.Unmarshal([]byte(clean), &probe) == nil {
		return ErrInvalidShape
	}
	return &ParseError{RawText: raw, Err: firstErr}
}
