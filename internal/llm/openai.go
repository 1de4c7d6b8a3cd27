package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"symptom-checker/internal/types"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI asks a chat completion model for a JSON diagnosis.
type OpenAI struct {
	client *openai.Client
	model  string
	spec   PromptSpec
}

// NewOpenAI creates an OpenAI engine; baseURL is optional.
func NewOpenAI(apiKey, model, baseURL string, spec PromptSpec) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model, spec: spec}, nil
}

func (o *OpenAI) Name() string { return "openai:" + o.model }

func (o *OpenAI) Diagnose(ctx context.Context, symptoms string) (*types.DiagnosisResult, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.spec.Style.Temperature,
		MaxTokens:   o.spec.Style.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: o.spec.UserPrompt(symptoms)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices")
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		return nil, fmt.Errorf("openai: %w", ErrTruncated)
	}
	return parseModelOutput(resp.Choices[0].Message.Content)
}

// systemPrompt embeds the field descriptions since chat completions have no
// response schema.
func (o *OpenAI) systemPrompt() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(o.spec.System))
	b.WriteString("\n\nRespond with a single JSON object with these keys:\n")
	fmt.Fprintf(&b, "- probable_conditions (array of strings): %s\n", o.spec.Fields.ProbableConditions)
	fmt.Fprintf(&b, "- recommended_next_steps (array of strings): %s\n", o.spec.Fields.RecommendedNextSteps)
	fmt.Fprintf(&b, "- safety_disclaimer (string): %s\n", o.spec.Fields.SafetyDisclaimer)
	fmt.Fprintf(&b, "- llm_reasoning_quality (string): %s\n", o.spec.Fields.ReasoningQuality)
	return b.String()
}
