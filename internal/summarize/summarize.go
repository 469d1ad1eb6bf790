// Package summarize produces meeting summaries from assembled
// transcripts via the OpenAI chat completions API.
package summarize

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v3"
)

const systemPrompt = "You are a conversation summarizer and task assigner. " +
	"Summarize the conversation below and list any action items."

// Summarizer turns a full speaker-labeled transcript into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// OpenAI calls chat completions with a function-tool schema hint that
// biases the model toward a summary + action items shape.
type OpenAI struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAI(client openai.Client) *OpenAI {
	return &OpenAI{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}
}

// conversationSummaryTool is the structured-output hint: the model may
// answer through it instead of plain content.
func conversationSummaryTool() openai.ChatCompletionToolUnionParam {
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        "conversation_summary",
		Description: openai.String("Summary of a recorded conversation with its action items"),
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"summary": map[string]any{
					"type":        "string",
					"description": "Concise summary of the conversation",
				},
				"action_items": map[string]any{
					"type":        "array",
					"description": "Tasks agreed on during the conversation",
					"items":       map[string]any{"type": "string"},
				},
			},
			"required": []string{"summary"},
		},
	})
}

func (o *OpenAI) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(transcript),
		},
		Model:       o.model,
		Temperature: openai.Float(0.7),
		Tools:       []openai.ChatCompletionToolUnionParam{conversationSummaryTool()},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	msg := resp.Choices[0].Message
	if msg.Content != "" {
		return msg.Content, nil
	}
	// The schema hint can make the model answer through the tool call
	// with empty content; use its arguments then.
	if len(msg.ToolCalls) > 0 && msg.ToolCalls[0].Function.Arguments != "" {
		return msg.ToolCalls[0].Function.Arguments, nil
	}

	return "", fmt.Errorf("empty message content")
}
