package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/soyeahso/voyant/internal/domain"
)

// toolCallRe matches ```tool_call\n{...}\n``` blocks in model output.
var toolCallRe = regexp.MustCompile("(?s)```tool_call\\s*\n(\\{.*?\\})\n\\s*```")

// codeFenceRe matches fenced code block markers on their own line. The
// markers are stripped from final replies; content between them stays.
var codeFenceRe = regexp.MustCompile(`(?m)^\s*` + "```" + `\w*\s*$`)

// blankLineCollapseRe collapses 3+ consecutive newlines to a single blank line.
var blankLineCollapseRe = regexp.MustCompile(`\n{3,}`)

// rawToolCall is the wire form of one tool_call block.
type rawToolCall struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// parseToolCalls extracts tool_call blocks from model output, in order.
// Malformed blocks are skipped.
func parseToolCalls(text string) []domain.ToolCall {
	matches := toolCallRe.FindAllStringSubmatch(text, -1)
	var calls []domain.ToolCall
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		var tc rawToolCall
		if err := json.Unmarshal([]byte(match[1]), &tc); err != nil {
			continue
		}
		if tc.Tool != "" {
			calls = append(calls, domain.ToolCall{Name: tc.Tool, Input: string(tc.Input)})
		}
	}
	return calls
}

// stripToolCalls removes tool_call blocks and fence markers from a reply,
// leaving the surrounding text readable in a plain terminal.
func stripToolCalls(text string) string {
	cleaned := toolCallRe.ReplaceAllString(text, "\n\n")
	cleaned = codeFenceRe.ReplaceAllString(cleaned, "")
	cleaned = blankLineCollapseRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
