package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hydroponica/ecdash/internal/export"
	"github.com/hydroponica/ecdash/internal/session"
	"github.com/hydroponica/ecdash/internal/utils"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write summary and raw tables as xlsx/csv files",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		sess, err := session.Open(c)
		if err != nil {
			return err
		}
		for _, w := range sess.Report.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
		}
		if err := utils.EnsureDir(exportOut); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		summary, err := export.SummaryWorkbook(sess.Summaries)
		if err != nil {
			return err
		}
		growth, err := export.GrowthWorkbook(sess.Tables.Growth)
		if err != nil {
			return err
		}
		envCSV, err := export.EnvironmentCSV(sess.Tables)
		if err != nil {
			return err
		}

		files := []struct {
			name string
			data []byte
		}{
			{"학교별_요약.xlsx", summary},
			{"생육결과_전체.xlsx", growth},
			{"환경데이터_전체.csv", envCSV},
		}
		for _, f := range files {
			path := filepath.Join(exportOut, f.name)
			if err := utils.SafeWriteFile(path, f.data); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "output directory")
}
