package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"symptom-checker/internal/types"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini asks Google's Gemini API for a structured JSON diagnosis.
type Gemini struct {
	client *genai.Client
	model  string
	spec   PromptSpec
}

// NewGemini creates a Gemini engine. baseURL is optional and only used to
// point the client at a proxy or test server.
func NewGemini(ctx context.Context, apiKey, model, baseURL string, spec PromptSpec) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model, spec: spec}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Diagnose(ctx context.Context, symptoms string) (*types.DiagnosisResult, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(g.spec.UserPrompt(symptoms)), g.generateConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return nil, fmt.Errorf("gemini: %w", ErrTruncated)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}
	return parseModelOutput(text)
}

func (g *Gemini) generateConfig() *genai.GenerateContentConfig {
	temp := g.spec.Style.Temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.spec.System, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(g.spec),
		Temperature:       &temp,
	}
	if g.spec.Style.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.spec.Style.MaxTokens)
	}
	return cfg
}

func responseSchema(spec PromptSpec) *genai.Schema {
	list := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: desc,
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"probable_conditions":    list(spec.Fields.ProbableConditions),
			"recommended_next_steps": list(spec.Fields.RecommendedNextSteps),
			"safety_disclaimer":      {Type: genai.TypeString, Description: spec.Fields.SafetyDisclaimer},
			"llm_reasoning_quality":  {Type: genai.TypeString, Description: spec.Fields.ReasoningQuality},
		},
		Required: []string{"probable_conditions", "recommended_next_steps", "safety_disclaimer", "llm_reasoning_quality"},
	}
}
