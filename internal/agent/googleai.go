package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/schedbot/schedbot/internal/toolset"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-flash-latest"

// GeminiCompleter is a Completer backed by a Gemini model via langchaingo.
type GeminiCompleter struct {
	client *googleai.GoogleAI
	model  string
}

// NewGeminiCompleter builds a Gemini-backed completer. The API key is read
// from GOOGLE_API_KEY; model falls back to DefaultModel when empty.
func NewGeminiCompleter(ctx context.Context, model string) (*GeminiCompleter, error) {
	key := os.Getenv("GOOGLE_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY not found in environment")
	}

	if model == "" {
		model = DefaultModel
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(key),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiCompleter{client: client, model: model}, nil
}

// Complete sends the transcript and tool descriptors to the model and
// returns the assistant text plus any tool calls it requested.
func (c *GeminiCompleter) Complete(ctx context.Context, messages []Message, tools []toolset.Tool) (string, []ToolCall, error) {
	opts := []llms.CallOption{
		llms.WithModel(c.model),
		llms.WithTemperature(0),
	}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(convertTools(tools)))
	}

	resp, err := c.client.GenerateContent(ctx, convertMessages(messages), opts...)
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("empty response from model %s", c.model)
	}

	choice := resp.Choices[0]
	calls := make([]ToolCall, 0, len(choice.ToolCalls))
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		calls = append(calls, ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}

	return choice.Content, calls, nil
}

func convertTools(tools []toolset.Tool) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}

func convertMessages(history []Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case RoleAssistant:
			var parts []llms.ContentPart
			if m.Content != "" {
				parts = append(parts, llms.TextPart(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			// Gemini rejects assistant turns with no parts at all.
			if len(parts) == 0 {
				parts = append(parts, llms.TextPart(" "))
			}
			messages = append(messages, llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: parts,
			})
		case RoleTool:
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: m.ToolCallID,
						Content:    m.Content,
					},
				},
			})
		}
	}
	return messages
}
