package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"symptom-checker/internal/checker"
	"symptom-checker/internal/types"
)

const (
	DefaultDisplayFor = 5 * time.Second
	DefaultFadeFor    = 500 * time.Millisecond

	validationText = "Please enter your symptoms to proceed."
	busyText       = "A symptom check is already in progress."
)

// ErrBusy is returned by Submit while another submission is in flight.
var ErrBusy = errors.New("a symptom check is already in progress")

// Checker is satisfied by *checker.Client.
type Checker interface {
	Check(ctx context.Context, symptoms string) (*types.DiagnosisResult, error)
}

// Controller handles submissions of the symptom form and drives a View.
type Controller struct {
	checker    Checker
	view       View
	logger     *zap.Logger
	displayFor time.Duration
	fadeFor    time.Duration

	inFlight atomic.Bool

	mu             sync.Mutex
	state          UIState
	resultsVisible bool
	msgID          string
	timer          *time.Timer
	closed         bool
}

type Option func(*Controller)

// WithMessageTiming sets how long a message is displayed and how long it fades.
func WithMessageTiming(display, fade time.Duration) Option {
	return func(c *Controller) {
		c.displayFor = display
		c.fadeFor = fade
	}
}

func NewController(chk Checker, view View, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		checker:    chk,
		view:       view,
		logger:     logger,
		displayFor: DefaultDisplayFor,
		fadeFor:    DefaultFadeFor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool { return c.inFlight.Load() }

// DisplayFor is how long a message stays fully visible before it fades.
func (c *Controller) DisplayFor() time.Duration { return c.displayFor }

// Submit runs one symptom check. The returned error is nil on success,
// ErrBusy when another check is running, or the checker's error.
func (c *Controller) Submit(ctx context.Context, raw string) (err error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.mu.Lock()
		c.showMessageLocked(busyText, SeverityInfo)
		c.mu.Unlock()
		return ErrBusy
	}
	defer c.inFlight.Store(false)

	text := strings.TrimSpace(raw)
	if text == "" {
		c.mu.Lock()
		c.showMessageLocked(validationText, SeverityError)
		c.state = ErrorBanner
		c.mu.Unlock()
		return &checker.ValidationError{Reason: "symptom text is required"}
	}

	c.mu.Lock()
	c.state = Loading
	c.resultsVisible = false
	c.view.SetSubmitEnabled(false)
	c.view.SetResultsVisible(false)
	c.view.SetLoading(true)
	c.mu.Unlock()
	c.logger.Info("symptom check started", zap.Int("chars", len(text)))

	var res *types.DiagnosisResult
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		switch {
		case err != nil:
			c.failLocked(err)
		case res != nil:
			c.showResultsLocked(res)
		default:
			// Check panicked
			c.state = Idle
		}
		c.view.SetLoading(false)
		c.view.SetSubmitEnabled(true)
	}()

	res, err = c.checker.Check(ctx, text)
	if err == nil && res == nil {
		err = &checker.ParseError{Err: errors.New("empty response")}
	}
	return err
}

func (c *Controller) showResultsLocked(res *types.DiagnosisResult) {
	c.view.RenderConditions(res.ProbableConditions)
	c.view.RenderSteps(res.RecommendedNextSteps)
	c.view.RenderDisclaimer(res.SafetyDisclaimer)
	c.view.RenderReasoning(res.Reasoning)
	c.view.SetResultsVisible(true)
	c.resultsVisible = true
	c.state = Results
	c.logger.Info("symptom check completed",
		zap.Int("conditions", len(res.ProbableConditions)),
		zap.Int("steps", len(res.RecommendedNextSteps)))
}

func (c *Controller) failLocked(err error) {
	c.logger.Warn("symptom check failed", zap.Error(err))
	c.showMessageLocked(FailureText(err), SeverityError)
	c.state = ErrorBanner
}

// FailureText is the banner shown for a failed check.
func FailureText(err error) string {
	return "Could not connect to the API or an error occurred: " + err.Error() +
		". Please ensure the diagnosis server is running and the API key is set."
}

// showMessageLocked replaces any visible message and schedules its dismissal.
func (c *Controller) showMessageLocked(text string, sev Severity) {
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.msgID != "" {
		c.view.RemoveMessage(c.msgID)
	}
	id := uuid.NewString()
	c.msgID = id
	c.view.ShowMessage(TransientMessage{ID: id, Text: text, Severity: sev})
	c.timer = time.AfterFunc(c.displayFor, func() { c.fade(id) })
}

func (c *Controller) fade(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.msgID != id {
		return
	}
	c.view.FadeMessage(id)
	c.timer = time.AfterFunc(c.fadeFor, func() { c.remove(id) })
}

func (c *Controller) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.msgID != id {
		return
	}
	c.view.RemoveMessage(id)
	c.msgID = ""
	c.timer = nil
	if c.state == ErrorBanner {
		c.state = Idle
		if c.resultsVisible {
			c.state = Results
		}
	}
}

// Close stops pending message timers and removes any visible message.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.msgID != "" {
		c.view.RemoveMessage(c.msgID)
		c.msgID = ""
	}
}
