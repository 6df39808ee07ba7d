package openai

// systemInstruction constrains the model to count grammatical, spelling, and
// punctuation errors and answer with a single strict JSON object. The
// normalizer downstream still treats the reply as untrusted.
const systemInstruction = `Ты — строгий проверяющий грамматики. Подсчитай количество грамматических, орфографических и пунктуационных ошибок в присланном тексте. Ответь ТОЛЬКО одним JSON без пояснений, строго вида: {"errorCount": <целое число>}.`

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type responsesRequest struct {
	Model           string         `json:"model"`
	Temperature     float64        `json:"temperature"`
	Input           []inputMessage `json:"input"`
	Stream          bool           `json:"stream"`
	MaxOutputTokens int            `json:"max_output_tokens"`
}

// buildResponsesRequest assembles the deterministic payload: temperature 0
// for reproducibility, output capped because the upstream is never expected
// to produce prose.
func buildResponsesRequest(model string, maxOutputTokens int, text string) responsesRequest {
	return responsesRequest{
		Model:       model,
		Temperature: 0,
		Input: []inputMessage{
			{
				Role:    "system",
				Content: []contentBlock{{Type: "text", Text: systemInstruction}},
			},
			{
				Role:    "user",
				Content: []contentBlock{{Type: "text", Text: text}},
			},
		},
		Stream:          false,
		MaxOutputTokens: maxOutputTokens,
	}
}
