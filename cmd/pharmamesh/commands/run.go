package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pharmamesh"
)

var (
	sendEmail  bool
	skipPrompt bool
)

const defaultQuery = "Give me a quality overview: open CAPAs, related investigations and clinical trial results."

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run the analysis pipeline for a query and print the report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		for _, warning := range cfg.Warnings() {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}

		query := defaultQuery
		if len(args) > 0 {
			query = args[0]
		}

		pipeline, err := pharmamesh.New(cmd.Context(), func(o *pharmamesh.Options) {
			o.Config = cfg
			o.Logger = buildLogger(cfg)
		})
		if err != nil {
			return err
		}

		result, err := pipeline.RunSync(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("pipeline run failed: %w", err)
		}

		printResult(cmd, result)

		if !sendEmail {
			return nil
		}

		if !skipPrompt && !confirm(cmd, fmt.Sprintf("Send report email to %s? [y/N]: ", cfg.Email.Recipient)) {
			cmd.Println("Email delivery skipped.")
			return nil
		}

		receipt, err := pipeline.SendReport(cmd.Context(), result)
		if err != nil {
			return fmt.Errorf("report delivery failed: %w", err)
		}

		cmd.Printf("Report sent to %s (message id %s)\n", receipt.Recipient, receipt.MessageID)

		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&sendEmail, "email", false, "Deliver the report by email after the run")
	runCmd.Flags().BoolVarP(&skipPrompt, "yes", "y", false, "Skip the email confirmation prompt")
}

func printResult(cmd *cobra.Command, result pharmamesh.Result) {
	cmd.Printf("Query: %s\n", result.Query)
	cmd.Printf("Run:   %s (session %s)\n\n", result.RunID, result.SessionID)

	if len(result.Breakdown.SubQuestions) > 0 {
		cmd.Println("Sub-questions:")

		for i, q := range result.Breakdown.SubQuestions {
			cmd.Printf("  %d. %s\n", i+1, q)
		}

		cmd.Println()
	}

	cmd.Printf("CAPA records:    %s\n", stageLine(result.RecordResult.Success, result.RecordResult.Error,
		fmt.Sprintf("%d open in the last year", result.RecordResult.Count)))
	cmd.Printf("Investigations:  %s\n", stageLine(result.GraphResult.Success, result.GraphResult.Error,
		fmt.Sprintf("%d for brand %s", result.GraphResult.Count, result.GraphResult.Brand)))
	cmd.Printf("Trial documents: %s\n\n", stageLine(result.SearchResult.Success, result.SearchResult.Error,
		fmt.Sprintf("%d relevant", result.SearchResult.DocumentsFound)))

	cmd.Println("Final summary:")
	cmd.Println(result.FinalSummary)
}

func stageLine(success bool, errMsg, detail string) string {
	if success {
		return detail
	}

	if errMsg == "" {
		errMsg = "unknown error"
	}

	return fmt.Sprintf("failed (%s)", errMsg)
}

// confirm asks the user a yes/no question on the command's input stream.
// Anything but an explicit yes declines.
func confirm(cmd *cobra.Command, prompt string) bool {
	cmd.Print(prompt)

	reader := bufio.NewReader(cmd.InOrStdin())

	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}
