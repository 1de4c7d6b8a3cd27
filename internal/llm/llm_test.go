package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"symptom-checker/internal/config"
	"symptom-checker/internal/types"
)

func TestDefaultPromptSpec(t *testing.T) {
	spec := DefaultPromptSpec()

	assert.Contains(t, spec.System, "symptom checker")
	assert.Equal(t,
		"Based on these symptoms: 'headache, fever', suggest possible conditions and next steps with an educational disclaimer.",
		spec.UserPrompt("headache, fever"))
	assert.NotEmpty(t, spec.Fields.SafetyDisclaimer)
	assert.Zero(t, spec.Style.MaxTokens)
}

func TestLoadPromptSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system: be careful\nprompt: \"symptoms={symptoms}\"\n"), 0o600))

	spec, err := LoadPromptSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "symptoms=cough", spec.UserPrompt("cough"))
	assert.Equal(t, float32(0.2), spec.Style.Temperature)

	_, err = LoadPromptSpec(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	spec, err = LoadPromptSpec("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPromptSpec(), spec)
}

func TestParsePromptSpecValidation(t *testing.T) {
	_, err := ParsePromptSpec([]byte("prompt: \"{symptoms}\""))
	assert.ErrorContains(t, err, "system")

	_, err = ParsePromptSpec([]byte("system: x\nprompt: no placeholder"))
	assert.ErrorContains(t, err, "{symptoms}")

	_, err = ParsePromptSpec([]byte("system: [unterminated"))
	assert.Error(t, err)

	_, err = ParsePromptSpec([]byte("system: x\nprompt: \"{symptoms}\"\nstyle:\n  max_tokens: -1"))
	assert.ErrorContains(t, err, "max_tokens")
}

func TestParseModelOutput(t *testing.T) {
	want := &types.DiagnosisResult{
		ProbableConditions:   []string{"Common cold", "Allergic rhinitis"},
		RecommendedNextSteps: []string{"Rest", "Drink fluids"},
		SafetyDisclaimer:     "**Not medical advice.**",
		Reasoning:            "Simple pattern match",
	}
	body := `{"probable_conditions":["Common cold","Allergic rhinitis"],"recommended_next_steps":["Rest","Drink fluids"],"safety_disclaimer":"**Not medical advice.**","llm_reasoning_quality":"Simple pattern match"}`

	for name, raw := range map[string]string{
		"plain":  body,
		"fenced": "```json\n" + body + "\n```",
		"prose":  "Here is the analysis:\n" + body + "\nStay safe.",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := parseModelOutput(raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseModelOutputDefaultsLists(t *testing.T) {
	got, err := parseModelOutput(`{"safety_disclaimer":"See a doctor"}`)
	require.NoError(t, err)
	assert.NotNil(t, got.ProbableConditions)
	assert.NotNil(t, got.RecommendedNextSteps)
	assert.Empty(t, got.ProbableConditions)
}

func TestParseModelOutputRejectsGarbage(t *testing.T) {
	_, err := parseModelOutput("I cannot help with that.")
	assert.Error(t, err)
}

type stubEngine struct {
	res *types.DiagnosisResult
	err error
}

func (s stubEngine) Diagnose(ctx context.Context, symptoms string) (*types.DiagnosisResult, error) {
	return s.res, s.err
}

func TestFallback(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("no engine", func(t *testing.T) {
		res, err := NewFallback(nil, "GEMINI_API_KEY", logger).Diagnose(context.Background(), "cough")
		require.NoError(t, err)
		assert.Equal(t, []string{"Setup Error: LLM Client Not Available"}, res.ProbableConditions)
		assert.Contains(t, res.RecommendedNextSteps[0], "GEMINI_API_KEY")
		assert.Contains(t, res.SafetyDisclaimer, "FATAL ERROR")
	})

	t.Run("engine error", func(t *testing.T) {
		res, err := NewFallback(stubEngine{err: errors.New("quota exceeded")}, "OPENAI_API_KEY", logger).Diagnose(context.Background(), "cough")
		require.NoError(t, err)
		assert.Equal(t, []string{"API Call Failed"}, res.ProbableConditions)
		assert.Equal(t, "Error Details: quota exceeded", res.RecommendedNextSteps[0])
		assert.Equal(t, "API Exception encountered.", res.Reasoning)
	})

	t.Run("engine result passes through", func(t *testing.T) {
		want := &types.DiagnosisResult{ProbableConditions: []string{"Flu"}, RecommendedNextSteps: []string{"Rest"}}
		res, err := NewFallback(stubEngine{res: want}, "GEMINI_API_KEY", logger).Diagnose(context.Background(), "fever")
		require.NoError(t, err)
		assert.Same(t, want, res)
	})
}

func TestOpenAIDiagnose(t *testing.T) {
	var got struct {
		Model          string `json:"model"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]string{
					"role":    "assistant",
					"content": `{"probable_conditions":["Flu"],"recommended_next_steps":["Rest"],"safety_disclaimer":"See a doctor","llm_reasoning_quality":"Matches common flu pattern"}`,
				},
			}},
		})
	}))
	defer srv.Close()

	engine, err := NewOpenAI("sk-test", "", srv.URL+"/v1", DefaultPromptSpec())
	require.NoError(t, err)
	assert.Equal(t, "openai:"+DefaultOpenAIModel, engine.Name())

	res, err := engine.Diagnose(context.Background(), "headache, fever")
	require.NoError(t, err)

	assert.Equal(t, []string{"Flu"}, res.ProbableConditions)
	assert.Equal(t, "Matches common flu pattern", res.Reasoning)
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "safety_disclaimer")
	assert.Contains(t, got.Messages[1].Content, "'headache, fever'")
}

func TestOpenAIDiagnoseAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	engine, err := NewOpenAI("sk-test", "gpt-4o", srv.URL+"/v1", DefaultPromptSpec())
	require.NoError(t, err)

	_, err = engine.Diagnose(context.Background(), "cough")
	assert.ErrorContains(t, err, "openai chat")
}

func TestEnginesRequireKeys(t *testing.T) {
	_, err := NewOpenAI("", "", "", DefaultPromptSpec())
	assert.Error(t, err)

	_, err = NewGemini(context.Background(), "", "", "", DefaultPromptSpec())
	assert.Error(t, err)
}

func TestGeminiConfig(t *testing.T) {
	g, err := NewGemini(context.Background(), "test-key", "", "", DefaultPromptSpec())
	require.NoError(t, err)
	assert.Equal(t, "gemini:"+DefaultGeminiModel, g.Name())

	cfg := g.generateConfig()
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.ResponseSchema)
	assert.ElementsMatch(t,
		[]string{"probable_conditions", "recommended_next_steps", "safety_disclaimer", "llm_reasoning_quality"},
		cfg.ResponseSchema.Required)
	assert.NotNil(t, cfg.ResponseSchema.Properties["probable_conditions"].Items)
	assert.Zero(t, cfg.MaxOutputTokens)

	spec := DefaultPromptSpec()
	spec.Style.MaxTokens = 4096
	g, err = NewGemini(context.Background(), "test-key", "", "", spec)
	require.NoError(t, err)
	assert.Equal(t, int32(4096), g.generateConfig().MaxOutputTokens)
}

// geminiServer answers generateContent calls with a single candidate and
// records the last request body.
func geminiServer(t *testing.T, text, finishReason string, got *map[string]any, path *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path != nil {
			*path = r.URL.Path
		}
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": text}},
				},
				"finishReason": finishReason,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiDiagnose(t *testing.T) {
	var (
		body map[string]any
		path string
	)
	srv := geminiServer(t,
		`{"probable_conditions":["Flu"],"recommended_next_steps":["Rest"],"safety_disclaimer":"See a doctor","llm_reasoning_quality":"Matches common flu pattern"}`,
		"STOP", &body, &path)

	g, err := NewGemini(context.Background(), "test-key", "", srv.URL, DefaultPromptSpec())
	require.NoError(t, err)

	res, err := g.Diagnose(context.Background(), "headache, fever")
	require.NoError(t, err)
	assert.Equal(t, &types.DiagnosisResult{
		ProbableConditions:   []string{"Flu"},
		RecommendedNextSteps: []string{"Rest"},
		SafetyDisclaimer:     "See a doctor",
		Reasoning:            "Matches common flu pattern",
	}, res)

	assert.Equal(t, "/v1beta/models/"+DefaultGeminiModel+":generateContent", path)
	assert.NotNil(t, body["systemInstruction"])
	assert.Contains(t, mustJSON(t, body["contents"]), "headache, fever")
	genCfg, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing: %v", body)
	assert.NotNil(t, genCfg["responseSchema"])
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.NotContains(t, genCfg, "maxOutputTokens")
}

func TestGeminiDiagnoseFailuresFallBack(t *testing.T) {
	for name, tc := range map[string]struct {
		text, finishReason, want string
	}{
		"empty text": {text: "", finishReason: "STOP", want: "empty response"},
		"truncated":  {text: `{"probable_conditions":["Fl`, finishReason: "MAX_TOKENS", want: "truncated at the token limit"},
	} {
		t.Run(name, func(t *testing.T) {
			srv := geminiServer(t, tc.text, tc.finishReason, nil, nil)
			g, err := NewGemini(context.Background(), "test-key", "", srv.URL, DefaultPromptSpec())
			require.NoError(t, err)

			_, err = g.Diagnose(context.Background(), "cough")
			require.Error(t, err)
			if tc.finishReason == "MAX_TOKENS" {
				assert.ErrorIs(t, err, ErrTruncated)
			}

			res, err := NewFallback(g, "GEMINI_API_KEY", zaptest.NewLogger(t)).Diagnose(context.Background(), "cough")
			require.NoError(t, err)
			assert.Equal(t, []string{"API Call Failed"}, res.ProbableConditions)
			assert.Contains(t, res.RecommendedNextSteps[0], tc.want)
		})
	}
}

func TestOpenAIDiagnoseTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-2",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "length",
				"message":       map[string]string{"role": "assistant", "content": `{"probable_conditions":["Fl`},
			}},
		})
	}))
	defer srv.Close()

	engine, err := NewOpenAI("sk-test", "", srv.URL+"/v1", DefaultPromptSpec())
	require.NoError(t, err)

	_, err = engine.Diagnose(context.Background(), "cough")
	assert.ErrorIs(t, err, ErrTruncated)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestNewFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	f, err := New(context.Background(), config.Config{Provider: "gemini"}, DefaultPromptSpec(), logger)
	require.NoError(t, err)
	res, err := f.Diagnose(context.Background(), "cough")
	require.NoError(t, err)
	assert.Contains(t, res.RecommendedNextSteps[0], "GEMINI_API_KEY")

	f, err = New(context.Background(), config.Config{Provider: "openai"}, DefaultPromptSpec(), logger)
	require.NoError(t, err)
	res, err = f.Diagnose(context.Background(), "cough")
	require.NoError(t, err)
	assert.Contains(t, res.RecommendedNextSteps[0], "OPENAI_API_KEY")

	_, err = New(context.Background(), config.Config{Provider: "claude"}, DefaultPromptSpec(), logger)
	assert.ErrorContains(t, err, "unsupported")
}
