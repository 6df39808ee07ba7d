package openai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// responsesResponse covers the fields this gateway reads from a Responses
// API reply. output_text is the API's collected-text convenience field; the
// output array is the fallback when it is absent.
type responsesResponse struct {
	OutputText string       `json:"output_text"`
	Output     []outputItem `json:"output"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Content []outputContent `json:"content"`
}

type outputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// collectOutputText flattens the reply into one text blob for the
// normalizer.
func collectOutputText(resp *responsesResponse) string {
	if resp.OutputText != "" {
		return resp.OutputText
	}

	var b strings.Builder
	for _, item := range resp.Output {
		for _, block := range item.Content {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// UpstreamError reports a non-success reply from the analysis upstream. The
// status and body are preserved so the gateway can relay them verbatim; no
// retry is attempted.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, body)
}

// ErrorValue extracts the upstream body's "error" field as raw JSON for
// relaying, or nil when the body carries no usable error payload.
func (e *UpstreamError) ErrorValue() json.RawMessage {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return nil
	}
	if len(payload.Error) == 0 || string(payload.Error) == "null" {
		return nil
	}
	return payload.Error
}
