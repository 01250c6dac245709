package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gaugetrack.GO/config"
	entity "gaugetrack.GO/model/entity"
	categoryRepo "gaugetrack.GO/model/repository/category"
	sequenceRepo "gaugetrack.GO/model/repository/sequence"
)

var seedFile string

// CSV columns: category_code,category_name,equipment_class,non_pairable,sub_type,prefix,next_value
var seedCmd = &cobra.Command{
	Use:   "sequences:seed",
	Short: "Seed categories and identifier sequences from CSV",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(seedFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}

		reader := csv.NewReader(f)
		records, err := reader.ReadAll()
		if err != nil {
			fmt.Printf("Failed to read CSV: %v\n", err)
			os.Exit(1)
		}
		if len(records) < 2 {
			fmt.Println("CSV has no data rows")
			return
		}

		cats := categoryRepo.NewCategoryRepository(db)
		seqs := sequenceRepo.NewSequenceRepository(db)
		catCreated, seqCreated := 0, 0

		for _, rec := range records[1:] {
			if len(rec) < 7 {
				fmt.Printf("skipping malformed row: %v\n", rec)
				continue
			}
			code := strings.TrimSpace(rec[0])
			n, err := cats.Seed([]entity.Category{{
				Code:           code,
				Name:           strings.TrimSpace(rec[1]),
				EquipmentClass: strings.TrimSpace(rec[2]),
				NonPairable:    rec[3] == "1" || strings.EqualFold(rec[3], "true"),
			}})
			if err != nil {
				fmt.Printf("seed category %s failed: %v\n", code, err)
				os.Exit(1)
			}
			catCreated += n

			cat, err := cats.ByCode(code)
			if err != nil {
				fmt.Printf("lookup category %s failed: %v\n", code, err)
				os.Exit(1)
			}
			next, _ := strconv.ParseUint(strings.TrimSpace(rec[6]), 10, 64)
			if next == 0 {
				next = 1
			}
			n, err = seqs.Seed([]entity.IdentifierSequence{{
				CategoryID: cat.CategoryID,
				SubType:    strings.TrimSpace(rec[4]),
				Prefix:     strings.TrimSpace(rec[5]),
				NextValue:  next,
			}})
			if err != nil {
				fmt.Printf("seed sequence for %s failed: %v\n", code, err)
				os.Exit(1)
			}
			seqCreated += n
		}
		fmt.Printf("Seeded %d categories, %d sequences\n", catCreated, seqCreated)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "seed/sequences.csv", "CSV file with categories and sequences")
	rootCmd.AddCommand(seedCmd)
}
