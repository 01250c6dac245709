package gauges

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
	categoryRepo "gaugetrack.GO/model/repository/category"
	"gaugetrack.GO/service/lifecycle"
)

// ImportOptions configures a spare-gauge import run.
type ImportOptions struct {
	Actor        string
	LocationCode string
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows int
	Created   int
	Skipped   int
	Warnings  []string
	TotalTime time.Duration
}

var requiredColumns = []string{"serial_number", "category", "equipment_class"}

// ImportSpares reads CSV data from r and registers each row as a spare
// gauge through the lifecycle engine (so every gauge gets its `created`
// ledger entry). Duplicate serials and validation failures are skipped
// with a warning; storage faults abort the run.
func ImportSpares(db *gorm.DB, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	start := time.Now()
	res := &ImportResult{}

	reader := csv.NewReader(r)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		colIndex[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", col)
		}
	}

	cats := categoryRepo.NewCategoryRepository(db)
	catByCode := make(map[string]*entity.Category)
	engine := lifecycle.NewEngine(db, nil)

	field := func(record []string, name string) string {
		idx, ok := colIndex[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", res.TotalRows+2, err)
		}
		res.TotalRows++

		catCode := field(record, "category")
		cat, ok := catByCode[catCode]
		if !ok {
			cat, err = cats.ByCode(catCode)
			if err != nil {
				res.Skipped++
				res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: unknown category %q", res.TotalRows+1, catCode))
				continue
			}
			catByCode[catCode] = cat
		}

		_, err = engine.CreateSpare(lifecycle.CreateSpareRequest{
			SerialNumber:   field(record, "serial_number"),
			EquipmentClass: field(record, "equipment_class"),
			CategoryID:     cat.CategoryID,
			SpecSize:       field(record, "spec_size"),
			SpecClass:      field(record, "spec_class"),
			SpecForm:       field(record, "spec_form"),
			SpecType:       field(record, "spec_type"),
			OwnershipType:  field(record, "ownership_type"),
			OwnerRef:       field(record, "owner_ref"),
			LocationCode:   firstNonEmpty(field(record, "location"), opts.LocationCode),
			Actor:          opts.Actor,
		})
		if err != nil {
			if faults.IsValidation(err) {
				res.Skipped++
				res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %v", res.TotalRows+1, err))
				continue
			}
			return res, err
		}
		res.Created++
	}

	res.TotalTime = time.Since(start)
	return res, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
