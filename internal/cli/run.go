// Package cli runs the symptom form from a terminal.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"symptom-checker/internal/form"
)

// ErrReported marks errors the terminal view has already shown to the user.
var ErrReported = errors.New("reported")

type Options struct {
	// Output is human, json or yaml.
	Output  string
	Width   int
	Color   bool
	Spinner bool
}

func validOutput(format string) bool {
	switch format {
	case "", "human", "json", "yaml":
		return true
	}
	return false
}

// Run submits symptoms once through a form controller and writes the result
// to out. Banners and progress go to errOut.
func Run(ctx context.Context, chk form.Checker, symptoms string, out, errOut io.Writer, opts Options, logger *zap.Logger) error {
	if !validOutput(opts.Output) {
		return fmt.Errorf("unknown output format %q (want human, json or yaml)", opts.Output)
	}
	view := NewTerminalView(out, errOut, opts)
	ctrl := form.NewController(chk, view, logger)
	defer ctrl.Close()

	if err := ctrl.Submit(ctx, symptoms); err != nil {
		return fmt.Errorf("%w: %w", ErrReported, err)
	}

	res := view.Result()
	switch opts.Output {
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))
	}
	return nil
}
