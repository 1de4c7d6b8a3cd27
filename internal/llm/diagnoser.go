package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"symptom-checker/internal/config"
	"symptom-checker/internal/types"
)

// ErrTruncated is returned when the model stopped at its output token limit
// before finishing the JSON answer.
var ErrTruncated = errors.New("model output truncated at the token limit")

// Diagnoser turns symptom text into a DiagnosisResult.
type Diagnoser interface {
	Diagnose(ctx context.Context, symptoms string) (*types.DiagnosisResult, error)
}

// Fallback never fails: a missing engine or an engine error becomes a
// result that tells the user what went wrong and to seek care if worried.
type Fallback struct {
	engine Diagnoser
	keyEnv string
	logger *zap.Logger
}

// NewFallback wraps engine, which may be nil when no engine could be set up.
// keyEnv names the variable the user should set.
func NewFallback(engine Diagnoser, keyEnv string, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{engine: engine, keyEnv: keyEnv, logger: logger}
}

func (f *Fallback) Diagnose(ctx context.Context, symptoms string) (*types.DiagnosisResult, error) {
	if f.engine == nil {
		return setupErrorResult(f.keyEnv), nil
	}
	res, err := f.engine.Diagnose(ctx, symptoms)
	if err != nil {
		f.logger.Error("llm call failed", zap.Error(err))
		return callFailedResult(err), nil
	}
	return res, nil
}

func setupErrorResult(keyEnv string) *types.DiagnosisResult {
	return &types.DiagnosisResult{
		ProbableConditions:   []string{"Setup Error: LLM Client Not Available"},
		RecommendedNextSteps: []string{fmt.Sprintf("Ensure your API key is correctly set as a %s environment variable.", keyEnv)},
		SafetyDisclaimer:     "⚠️ **FATAL ERROR:** The AI service is offline. Seek medical attention if needed.",
		Reasoning:            "Failed to connect to LLM.",
	}
}

func callFailedResult(err error) *types.DiagnosisResult {
	return &types.DiagnosisResult{
		ProbableConditions: []string{"API Call Failed"},
		RecommendedNextSteps: []string{
			fmt.Sprintf("Error Details: %v", err),
			"Please check your network connection and API key status.",
		},
		SafetyDisclaimer: "⚠️ **ERROR:** The AI service failed to generate a response. Seek immediate medical attention if concerned.",
		Reasoning:        "API Exception encountered.",
	}
}

// New builds the configured engine wrapped in a Fallback. Only an unknown
// provider is an error; a missing key yields the setup-error fallback.
func New(ctx context.Context, cfg config.Config, spec PromptSpec, logger *zap.Logger) (*Fallback, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case "gemini", "":
		engine, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, "", spec)
		if err != nil {
			logger.Warn("gemini engine unavailable", zap.Error(err))
			return NewFallback(nil, "GEMINI_API_KEY", logger), nil
		}
		logger.Info("llm engine ready", zap.String("engine", engine.Name()))
		return NewFallback(engine, "GEMINI_API_KEY", logger), nil
	case "openai":
		engine, err := NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, "", spec)
		if err != nil {
			logger.Warn("openai engine unavailable", zap.Error(err))
			return NewFallback(nil, "OPENAI_API_KEY", logger), nil
		}
		logger.Info("llm engine ready", zap.String("engine", engine.Name()))
		return NewFallback(engine, "OPENAI_API_KEY", logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %s (supported: gemini, openai)", cfg.Provider)
	}
}
