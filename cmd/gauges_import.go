package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gaugetrack.GO/config"
	gaugesService "gaugetrack.GO/service/gauges"
)

var (
	importFile     string
	importActor    string
	importLocation string
)

var importCmd = &cobra.Command{
	Use:   "gauges:import",
	Short: "Import spare gauges from CSV",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(importFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			return
		}
		defer f.Close()

		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		res, err := gaugesService.ImportSpares(db, f, gaugesService.ImportOptions{
			Actor:        importActor,
			LocationCode: importLocation,
		})
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			return
		}

		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Import Report ===
CSV rows:   %d
Created:    %d
Skipped:    %d
Total time: %s
=====================
`, res.TotalRows, res.Created, res.Skipped, res.TotalTime.Round(time.Millisecond))
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file with spare gauges (required)")
	importCmd.Flags().StringVar(&importActor, "actor", "cli", "Actor recorded in the ledger")
	importCmd.Flags().StringVar(&importLocation, "location", "", "Default location code for imported gauges")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
