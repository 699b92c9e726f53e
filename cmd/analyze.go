package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// newAnalyzeCmd creates the 'analyze' subcommand, which runs one job inline
// and prints the resulting style guide as JSON.
func newAnalyzeCmd() *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyzes a single URL and prints its style guide",
		Long: `Renders the page, extracts its colors and typography, and writes the
style guide JSON to stdout. With --pdf the rendered document is also written
to the given path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], pdfPath)
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write the rendered PDF to this path")
	return cmd
}

func runAnalyze(cmd *cobra.Command, rawURL, pdfPath string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	job, err := appInstance.Analyze(cmd.Context(), rawURL)
	if err != nil {
		return err
	}
	if job.Status != styleguide.StatusCompleted {
		return fmt.Errorf("analysis of %s failed: %s", job.URL, job.Error)
	}
	if job.Result == nil {
		return errors.New("analysis completed without a result")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(job.Result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if pdfPath == "" {
		return nil
	}
	doc, err := appInstance.Render(*job.Result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(pdfPath, doc, 0o600); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	logger.Info("pdf written", zap.String("path", pdfPath), zap.Int("bytes", len(doc)))
	return nil
}
