package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"symptom-checker/internal/form"
	"symptom-checker/internal/render"
	"symptom-checker/internal/types"
)

// indicator is satisfied by *spinner.Spinner.
type indicator interface {
	Start()
	Stop()
}

type noIndicator struct{}

func (noIndicator) Start() {}
func (noIndicator) Stop() {}

// TerminalView shows the symptom form's progress and results on a terminal.
// In human mode the report is printed once results become visible; other
// modes only collect the result for the caller to encode.
type TerminalView struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	human  bool
	width  int
	color  bool
	spin   indicator
	result types.DiagnosisResult

	header, errorC, infoC, muted *color.Color
}

func NewTerminalView(out, errOut io.Writer, opts Options) *TerminalView {
	v := &TerminalView{
		out:    out,
		errOut: errOut,
		human:  opts.Output == "" || opts.Output == "human",
		width:  opts.Width,
		color:  opts.Color,
		header: color.New(color.FgCyan, color.Bold),
		errorC: color.New(color.FgRed, color.Bold),
		infoC:  color.New(color.FgYellow),
		muted:  color.New(color.FgHiBlack),
		spin:   noIndicator{},
	}
	if v.width <= 0 {
		v.width = 80
	}
	if !opts.Color {
		for _, c := range []*color.Color{v.header, v.errorC, v.infoC, v.muted} {
			c.DisableColor()
		}
	}
	if opts.Spinner {
		spin := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(errOut))
		spin.Suffix = " Analyzing your symptoms..."
		v.spin = spin
	}
	return v
}

func (v *TerminalView) SetLoading(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if visible {
		v.spin.Start()
	} else {
		v.spin.Stop()
	}
}

func (v *TerminalView) SetResultsVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if visible && v.human {
		// stop before printing so no spinner frame lands in the report
		v.spin.Stop()
		v.printReportLocked()
	}
}

// SetSubmitEnabled is a no-op: a terminal check submits once.
func (v *TerminalView) SetSubmitEnabled(bool) {}

func (v *TerminalView) RenderConditions(items []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result.ProbableConditions = append([]string{}, items...)
}

func (v *TerminalView) RenderSteps(items []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result.RecommendedNextSteps = append([]string{}, items...)
}

func (v *TerminalView) RenderDisclaimer(markup string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result.SafetyDisclaimer = markup
}

func (v *TerminalView) RenderReasoning(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result.Reasoning = text
}

func (v *TerminalView) ShowMessage(msg form.TransientMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spin.Stop()
	if msg.Severity == form.SeverityInfo {
		v.infoC.Fprintf(v.errOut, "ℹ %s\n", msg.Text)
		return
	}
	v.errorC.Fprintf(v.errOut, "✖ %s\n", msg.Text)
}

// Printed lines cannot be faded or taken back.
func (v *TerminalView) FadeMessage(string) {}
func (v *TerminalView) RemoveMessage(string) {}

// Result returns the last rendered result.
func (v *TerminalView) Result() types.DiagnosisResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

func (v *TerminalView) printReportLocked() {
	fmt.Fprintln(v.out)
	v.header.Fprintln(v.out, "PROBABLE CONDITIONS:")
	printList(v.out, v.result.ProbableConditions)

	v.header.Fprintln(v.out, "RECOMMENDED NEXT STEPS:")
	printList(v.out, v.result.RecommendedNextSteps)

	if strings.TrimSpace(v.result.SafetyDisclaimer) != "" {
		v.errorC.Fprintln(v.out, "SAFETY DISCLAIMER:")
		text, err := render.Terminal(v.result.SafetyDisclaimer, v.width, v.color)
		if err != nil {
			text = render.PlainText(v.result.SafetyDisclaimer)
		}
		fmt.Fprintf(v.out, "%s\n\n", text)
	}

	if v.result.Reasoning != "" {
		fmt.Fprintf(v.out, "Reasoning: %s\n\n", v.muted.Sprint(v.result.Reasoning))
	}

	fmt.Fprintln(v.out, strings.Repeat("─", v.width))
	fmt.Fprintf(v.out, "%s\n", v.muted.Sprint("Run with -o json or -o yaml for machine-readable output"))
}

func printList(w io.Writer, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "   (none)")
	}
	for i, item := range items {
		fmt.Fprintf(w, "   %d. %s\n", i+1, item)
	}
	fmt.Fprintln(w)
}
