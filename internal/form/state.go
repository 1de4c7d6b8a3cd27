package form

import "fmt"

// UIState is the single active phase of the form.
type UIState int

const (
	Idle UIState = iota
	Loading
	Results
	ErrorBanner
)

func (s UIState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Results:
		return "results"
	case ErrorBanner:
		return "error_banner"
	default:
		return fmt.Sprintf("UIState(%d)", int(s))
	}
}

func (s UIState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// TransientMessage is a banner that dismisses itself.
type TransientMessage struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}
