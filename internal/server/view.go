package server

import (
	"html/template"
	"sync"
	"time"

	"symptom-checker/internal/form"
	"symptom-checker/internal/render"
)

// htmlView is the browser session's form, rendered by the page template.
type htmlView struct {
	mu             sync.Mutex
	displayFor     time.Duration
	now            func() time.Time
	loading        bool
	resultsVisible bool
	submitEnabled  bool
	conditions     []string
	steps          []string
	disclaimer     template.HTML
	reasoning      string
	message        *shownMessage
}

type shownMessage struct {
	msg     form.TransientMessage
	shownAt time.Time
	fading  bool
}

func newHTMLView(displayFor time.Duration) *htmlView {
	return &htmlView{displayFor: displayFor, now: time.Now, submitEnabled: true}
}

func (v *htmlView) SetLoading(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = visible
}

func (v *htmlView) SetResultsVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resultsVisible = visible
}

func (v *htmlView) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitEnabled = enabled
}

func (v *htmlView) RenderConditions(items []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conditions = append([]string(nil), items...)
}

func (v *htmlView) RenderSteps(items []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.steps = append([]string(nil), items...)
}

func (v *htmlView) RenderDisclaimer(markup string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disclaimer = render.Disclaimer(markup)
}

func (v *htmlView) RenderReasoning(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reasoning = text
}

func (v *htmlView) ShowMessage(msg form.TransientMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = &shownMessage{msg: msg, shownAt: v.now()}
}

func (v *htmlView) FadeMessage(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.message != nil && v.message.msg.ID == id {
		v.message.fading = true
	}
}

func (v *htmlView) RemoveMessage(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.message != nil && v.message.msg.ID == id {
		v.message = nil
	}
}

// viewState is a point-in-time copy of the view, used by the page template
// and the JSON state endpoint.
type viewState struct {
	State          form.UIState  `json:"state"`
	Loading        bool          `json:"loading"`
	ResultsVisible bool          `json:"results_visible"`
	SubmitEnabled  bool          `json:"submit_enabled"`
	Conditions     []string      `json:"probable_conditions"`
	Steps          []string      `json:"recommended_next_steps"`
	Disclaimer     template.HTML `json:"safety_disclaimer_html"`
	Reasoning      string        `json:"reasoning"`
	Message        *messageState `json:"message,omitempty"`
}

type messageState struct {
	form.TransientMessage
	Fading bool `json:"fading"`
	// DismissInMS is how long the page should keep the message before fading it.
	DismissInMS int64 `json:"dismiss_in_ms"`
}

func (v *htmlView) snapshot(state form.UIState) viewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	vs := viewState{
		State:          state,
		Loading:        v.loading,
		ResultsVisible: v.resultsVisible,
		SubmitEnabled:  v.submitEnabled,
		Conditions:     append([]string{}, v.conditions...),
		Steps:          append([]string{}, v.steps...),
		Disclaimer:     v.disclaimer,
		Reasoning:      v.reasoning,
	}
	if m := v.message; m != nil {
		remaining := v.displayFor - v.now().Sub(m.shownAt)
		if remaining < 0 || m.fading {
			remaining = 0
		}
		vs.Message = &messageState{
			TransientMessage: m.msg,
			Fading:           m.fading,
			DismissInMS:      remaining.Milliseconds(),
		}
	}
	return vs
}
