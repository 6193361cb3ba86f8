package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PiyushChall/CogniSynapseRank/internal/client"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Query the current status of an analysis task",
	Long: `Performs a single status query for the given task ID and prints the
current progress label. Exits non-zero if the task is unknown.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	serverURL, _ := cmd.Flags().GetString("server")

	c, err := newAnalysisClient(serverURL)
	if err != nil {
		return err
	}

	status, err := c.Status(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, client.ErrTaskNotFound) {
			return fmt.Errorf("task %s not found", args[0])
		}
		return fmt.Errorf("status query failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}
