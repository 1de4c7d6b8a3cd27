package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"symptom-checker/internal/checker"
	"symptom-checker/internal/config"
	"symptom-checker/internal/logging"
)

// NewCheckCmd builds the "check" command. Flag defaults come from cfg.
func NewCheckCmd(cfg config.Config) *cobra.Command {
	var (
		endpoint     string
		timeout      time.Duration
		outputFormat string
		noColor      bool
		verbose      bool
	)
	cmd := &cobra.Command{
		Use:   "check [SYMPTOMS...]",
		Short: "Check symptoms against the diagnosis server",
		Long: `Send a symptom description to the diagnosis server and print the probable
conditions, recommended next steps and safety disclaimer.

Examples:
  # Check symptoms given as arguments
  symptom-check check "headache and fever since yesterday"

  # Read symptoms from stdin
  echo "sore throat, mild cough" | symptom-check check -

  # Machine-readable output
  symptom-check check "rash on both arms" -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symptoms, err := readSymptoms(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			level := "error"
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(level, "console")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			chk := checker.New(endpoint, checker.WithTimeout(timeout))
			opts := Options{
				Output:  outputFormat,
				Width:   80,
				Color:   !noColor && isTerminal(cmd.OutOrStdout()),
				Spinner: outputFormat == "human" && isTerminal(cmd.ErrOrStderr()),
			}
			return Run(cmd.Context(), chk, symptoms, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, logger)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", cfg.CheckEndpoint, "Diagnosis endpoint URL")
	cmd.Flags().DurationVar(&timeout, "timeout", cfg.CheckTimeout, "Request timeout (0 for none)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

// readSymptoms joins the arguments, or reads stdin when there are none or the
// only argument is "-". Empty text is left for the form to reject.
func readSymptoms(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
