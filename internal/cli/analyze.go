package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/PiyushChall/CogniSynapseRank/internal/client"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Submit a URL for analysis and poll until it completes",
	Long: `Submits the given URL (plus optional comparison URLs) to the analysis
server, then polls the results endpoint every two seconds, printing each
progress status until the analysis completes or fails.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("url", "", "main URL to analyze (required)")
	analyzeCmd.Flags().String("compare", "", "comma-separated comparison URLs")
	analyzeCmd.Flags().Duration("interval", client.DefaultPollInterval, "polling interval")
	analyzeCmd.Flags().Duration("timeout", 0, "maximum total polling time (0 = unbounded)")
	analyzeCmd.Flags().Int("max-attempts", 0, "maximum number of status queries (0 = unbounded)")
	analyzeCmd.Flags().Int("tolerate-failures", 1, "consecutive query failures tolerated before giving up")
	_ = analyzeCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	mainURL, _ := cmd.Flags().GetString("url")
	compare, _ := cmd.Flags().GetString("compare")
	serverURL, _ := cmd.Flags().GetString("server")
	interval, _ := cmd.Flags().GetDuration("interval")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	tolerateFailures, _ := cmd.Flags().GetInt("tolerate-failures")

	c, err := newAnalysisClient(serverURL)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	submission := client.NewSubmission(mainURL, compare)

	handle, err := c.Submit(ctx, submission)
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Analysis started, task %s\n", handle.ID)

	opts := []client.PollOption{
		client.WithInterval(interval),
		client.WithFailureThreshold(tolerateFailures),
	}
	if timeout > 0 {
		opts = append(opts, client.WithTimeout(timeout))
	}
	if maxAttempts > 0 {
		opts = append(opts, client.WithMaxAttempts(maxAttempts))
	}

	err = c.PollUntilComplete(ctx, handle.ID, func(status string) {
		fmt.Fprintln(cmd.OutOrStdout(), status)
	}, opts...)

	switch {
	case err == nil:
		fmt.Fprintln(cmd.OutOrStdout(), "Analysis Completed")
		return nil
	case errors.Is(err, client.ErrAnalysisFailed):
		return errors.New("the analysis failed; check the server logs for details")
	case errors.Is(err, client.ErrPollTimeout):
		return fmt.Errorf("gave up waiting for task %s: %w", handle.ID, err)
	case errors.Is(err, client.ErrAttemptsExhausted):
		return fmt.Errorf("gave up waiting for task %s: %w", handle.ID, err)
	default:
		return fmt.Errorf("polling failed: %w", err)
	}
}

// newAnalysisClient builds a client with a quiet logger; CLI output goes
// through the command's writers, not structured logs.
func newAnalysisClient(serverURL string) (*client.Client, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("RANKCTL_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	c, err := client.NewClient(serverURL, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	return c, nil
}
