package types

// SymptomQuery is the request body accepted by /check_symptoms.
type SymptomQuery struct {
	Symptoms string `json:"symptoms"`
}

// DiagnosisResult is the success body returned by /check_symptoms.
type DiagnosisResult struct {
	ProbableConditions   []string `json:"probable_conditions" yaml:"probable_conditions"`
	RecommendedNextSteps []string `json:"recommended_next_steps" yaml:"recommended_next_steps"`
	// SafetyDisclaimer may contain markup.
	SafetyDisclaimer string `json:"safety_disclaimer" yaml:"safety_disclaimer"`
	Reasoning        string `json:"reasoning" yaml:"reasoning"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
