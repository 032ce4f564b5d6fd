package main

import (
	"fmt"
	"os"

	"github.com/dgnsrekt/envoy/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportOutput string

	exportCmd = &cobra.Command{
		Use:   "export ID",
		Short: "Export a saved briefing to PDF",
		Long: paragraph(fmt.Sprintf("\n%s a saved briefing as an A4 PDF. Without -o the file is written to the current directory as MUN_Briefing_<country>_<topic>.pdf.",
			keyword("Export"))),
		Example: paragraph("envoy export 3f2a\nenvoy export 3f2a -o ~/Documents"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := historyItem(args[0])
			if err != nil {
				return err
			}
			b := item.Briefing()

			dest := exportOutput
			if dest == "" {
				dest = export.Filename(b.Country, b.Topic)
			}
			path, err := exportBriefing(cmd.Context(), b, dest)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Wrote", path)
			return nil
		},
	}
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file or directory")
}
