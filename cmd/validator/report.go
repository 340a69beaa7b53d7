package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foundrygate/gateway-validator/internal/services"
	"github.com/foundrygate/gateway-validator/pkg/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export validation run history to a spreadsheet",
	RunE:  runReport,
}

func init() {
	flags := reportCmd.Flags()
	flags.String("output", "validation-report.xlsx", "path of the .xlsx file to write")
	flags.String("connection", "", "only include runs for this connection")
	flags.Uint64("limit", 100, "maximum number of runs to export")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	connection, _ := cmd.Flags().GetString("connection")
	limit, _ := cmd.Flags().GetUint64("limit")

	st, err := requireStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := services.NewValidationService(nil, nil, st)
	runs, err := svc.Runs(cmd.Context(), connection, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no validation runs recorded yet")
	}

	if err := report.WriteExcel(output, runs); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d runs to %s\n", len(runs), output)
	return nil
}
