package llm

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"symptom-checker/internal/types"
)

//go:embed prompts/diagnosis.yaml
var defaultPrompt []byte

// PromptSpec is the YAML description of how engines are asked for a diagnosis.
type PromptSpec struct {
	System string `yaml:"system"`
	// Prompt is the user turn; {symptoms} is replaced with the query text.
	Prompt string `yaml:"prompt"`
	Fields struct {
		ProbableConditions   string `yaml:"probable_conditions"`
		RecommendedNextSteps string `yaml:"recommended_next_steps"`
		SafetyDisclaimer     string `yaml:"safety_disclaimer"`
		ReasoningQuality     string `yaml:"llm_reasoning_quality"`
	} `yaml:"fields"`
	Style struct {
		Temperature float32 `yaml:"temperature"`
		// MaxTokens is sent only when set.
		MaxTokens int `yaml:"max_tokens"`
	} `yaml:"style"`
}

// DefaultPromptSpec returns the built-in prompt.
func DefaultPromptSpec() PromptSpec {
	spec, err := ParsePromptSpec(defaultPrompt)
	if err != nil {
		panic(fmt.Sprintf("embedded prompt spec: %v", err))
	}
	return spec
}

// LoadPromptSpec reads a prompt spec from path, or the built-in one when path is empty.
func LoadPromptSpec(path string) (PromptSpec, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPromptSpec(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return PromptSpec{}, err
	}
	return ParsePromptSpec(b)
}

func ParsePromptSpec(b []byte) (PromptSpec, error) {
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return PromptSpec{}, fmt.Errorf("parse prompt spec: %w", err)
	}
	if strings.TrimSpace(spec.System) == "" {
		return PromptSpec{}, fmt.Errorf("prompt spec: system is required")
	}
	if !strings.Contains(spec.Prompt, "{symptoms}") {
		return PromptSpec{}, fmt.Errorf("prompt spec: prompt must contain {symptoms}")
	}
	if spec.Style.Temperature <= 0 {
		spec.Style.Temperature = 0.2
	}
	if spec.Style.MaxTokens < 0 {
		return PromptSpec{}, fmt.Errorf("prompt spec: max_tokens must not be negative")
	}
	return spec, nil
}

// UserPrompt fills the prompt template.
func (s PromptSpec) UserPrompt(symptoms string) string {
	return strings.ReplaceAll(s.Prompt, "{symptoms}", symptoms)
}

// modelOutput is the JSON object engines are asked to produce.
type modelOutput struct {
	ProbableConditions   []string `json:"probable_conditions"`
	RecommendedNextSteps []string `json:"recommended_next_steps"`
	SafetyDisclaimer     string   `json:"safety_disclaimer"`
	ReasoningQuality     string   `json:"llm_reasoning_quality"`
}

var fences = regexp.MustCompile("```[a-zA-Z]*\n?|```")

// parseModelOutput decodes the model's JSON, tolerating code fences and
// prose around the object.
func parseModelOutput(raw string) (*types.DiagnosisResult, error) {
	cleaned := strings.TrimSpace(fences.ReplaceAllString(raw, ""))
	var out modelOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		first := strings.Index(cleaned, "{")
		last := strings.LastIndex(cleaned, "}")
		if first < 0 || last <= first {
			return nil, fmt.Errorf("model output is not JSON: %w", err)
		}
		if err2 := json.Unmarshal([]byte(cleaned[first:last+1]), &out); err2 != nil {
			return nil, fmt.Errorf("model output is not JSON: %w", err)
		}
	}
	res := &types.DiagnosisResult{
		ProbableConditions:   out.ProbableConditions,
		RecommendedNextSteps: out.RecommendedNextSteps,
		SafetyDisclaimer:     out.SafetyDisclaimer,
		Reasoning:            out.ReasoningQuality,
	}
	if res.ProbableConditions == nil {
		res.ProbableConditions = []string{}
	}
	if res.RecommendedNextSteps == nil {
		res.RecommendedNextSteps = []string{}
	}
	return res, nil
}
