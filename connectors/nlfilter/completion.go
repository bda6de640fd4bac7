package nlfilter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kilianp07/rulecheck/core/model"
)

type proxyRequest struct {
	Question string         `json:"question"`
	Data     []model.Record `json:"data"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

const promptTemplate = `You receive a JSON dataset and a filter request written in natural language.
Answer with the JSON array of the matching objects only, unchanged. Do not add any explanation.

Query: %s
Data: %s
`

// buildPrompt embeds the serialized data, cut after maxChars characters.
func buildPrompt(question string, data []model.Record, maxChars int) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode data: %w", err)
	}
	return fmt.Sprintf(promptTemplate, question, truncate(string(b), maxChars)), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// completionContent extracts the assistant message. A missing message
// reads as an empty selection.
func completionContent(raw []byte) string {
	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		return "[]"
	}
	return stripFence(content.String())
}

// stripFence removes a markdown code fence around the answer.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
