// Package analysis holds the grammar-check domain: validated request and
// result types, the normalizer that makes the upstream's loose text output
// safe, and the analyzer service tying them to the upstream client.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxTextLength is the cap on analyzed text, in runes.
const MaxTextLength = 4000

// Request is a validated analysis payload. Produced only by ParseRequest;
// no downstream component accepts raw body bytes.
type Request struct {
	Text string
}

// Result is the sole successful output shape of the analyze route.
type Result struct {
	ErrorCount int `json:"errorCount"`
}

var (
	// ErrMissingText reports an absent, empty, or non-string "text" field.
	ErrMissingText = errors.New("text field is missing or not a string")

	// ErrTextTooLong reports text over MaxTextLength runes.
	ErrTextTooLong = fmt.Errorf("text exceeds %d characters", MaxTextLength)
)

// ParseRequest validates a raw JSON body into a Request. Valid text passes
// through untouched: no trimming, no encoding normalization.
func ParseRequest(body []byte) (Request, error) {
	var payload struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Request{}, ErrMissingText
	}
	if payload.Text == nil || *payload.Text == "" {
		return Request{}, ErrMissingText
	}
	if utf8.RuneCountInString(*payload.Text) > MaxTextLength {
		return Request{}, ErrTextTooLong
	}
	return Request{Text: *payload.Text}, nil
}
