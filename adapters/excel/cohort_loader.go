package excel

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"phenostats/adapters/stats/engine"
	"phenostats/domain/core"
	domainstats "phenostats/domain/stats"
	"phenostats/internal/errors"
)

// Sheet names expected in a cohort workbook. Only "variants" is mandatory;
// survival and phenotype sheets are optional sections of the analysis.
const (
	SheetVariants   = "variants"
	SheetSurvival   = "survival"
	SheetPhenotypes = "phenotypes"
)

// CohortLoader reads a cohort analysis request from an Excel workbook.
// This is the ingestion side only; result export lives with the surrounding
// application, not here.
type CohortLoader struct {
	filePath string
}

// NewCohortLoader creates a loader for the given workbook path.
func NewCohortLoader(filePath string) *CohortLoader {
	return &CohortLoader{filePath: filePath}
}

// Load reads the workbook into a CohortRequest. Malformed cells are rejected
// with DATA_FORMAT errors carrying the sheet and row position.
func (l *CohortLoader) Load() (*engine.CohortRequest, error) {
	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("cohort workbook %s", l.filePath))
	}

	f, err := excelize.OpenFile(l.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cohort workbook")
	}
	defer f.Close()

	req := &engine.CohortRequest{}

	if err := l.loadVariants(f, req); err != nil {
		return nil, err
	}
	if err := l.loadSurvival(f, req); err != nil {
		return nil, err
	}
	if err := l.loadPhenotypes(f, req); err != nil {
		return nil, err
	}

	log.Printf("[CohortLoader] loaded %s: %d+%d distances, %d survival groups, %d phenotypes",
		l.filePath, len(req.Group1Distances), len(req.Group2Distances),
		len(req.SurvivalGroups), len(req.Phenotypes))

	return req, nil
}

// loadVariants reads the variants sheet: one row per variant, columns
// (group, distance). The sheet must contain exactly two distinct groups;
// Group1/Group2 follow first appearance order.
func (l *CohortLoader) loadVariants(f *excelize.File, req *engine.CohortRequest) error {
	rows, err := f.GetRows(SheetVariants)
	if err != nil {
		return errors.DataFormat(fmt.Sprintf("sheet %q is required: %v", SheetVariants, err))
	}
	if len(rows) < 2 {
		return errors.DataFormat(fmt.Sprintf("sheet %q needs a header row and at least one variant", SheetVariants))
	}

	samples := map[string]domainstats.Sample{}
	var order []string
	for i, row := range rows[1:] {
		if len(row) < 2 {
			continue // blank trailing row
		}
		group := strings.TrimSpace(row[0])
		if group == "" {
			return errors.DataFormat(rowErr(SheetVariants, i+2, "empty group name"))
		}
		distance, err := parseFloatCell(row[1])
		if err != nil {
			return errors.DataFormat(rowErr(SheetVariants, i+2, "bad distance: "+err.Error()))
		}
		if _, seen := samples[group]; !seen {
			order = append(order, group)
		}
		samples[group] = append(samples[group], distance)
	}
	if len(order) != 2 {
		return errors.DataFormat(fmt.Sprintf("sheet %q must contain exactly two groups, got %d", SheetVariants, len(order)))
	}

	req.Group1Name = core.GroupName(order[0])
	req.Group1Distances = samples[order[0]]
	req.Group2Name = core.GroupName(order[1])
	req.Group2Distances = samples[order[1]]
	return nil
}

// loadSurvival reads the optional survival sheet: columns
// (group, time, event) with event as a boolean cell.
func (l *CohortLoader) loadSurvival(f *excelize.File, req *engine.CohortRequest) error {
	rows, err := f.GetRows(SheetSurvival)
	if err != nil {
		return nil // optional sheet
	}
	if len(rows) < 2 {
		return nil
	}

	subjects := map[string][]domainstats.SubjectTime{}
	var order []string
	for i, row := range rows[1:] {
		if len(row) < 3 {
			continue
		}
		group := strings.TrimSpace(row[0])
		if group == "" {
			return errors.DataFormat(rowErr(SheetSurvival, i+2, "empty group name"))
		}
		t, err := parseFloatCell(row[1])
		if err != nil {
			return errors.DataFormat(rowErr(SheetSurvival, i+2, "bad time: "+err.Error()))
		}
		event, err := parseBoolCell(row[2])
		if err != nil {
			return errors.DataFormat(rowErr(SheetSurvival, i+2, "bad event flag: "+err.Error()))
		}
		if _, seen := subjects[group]; !seen {
			order = append(order, group)
		}
		subjects[group] = append(subjects[group], domainstats.SubjectTime{Time: t, Event: event})
	}

	for _, group := range order {
		req.SurvivalGroups = append(req.SurvivalGroups, domainstats.GroupEvents{
			Name:     core.GroupName(group),
			Subjects: subjects[group],
		})
	}
	return nil
}

// loadPhenotypes reads the optional phenotypes sheet: columns
// (phenotype, group1_present, group1_total, group2_present, group2_total).
func (l *CohortLoader) loadPhenotypes(f *excelize.File, req *engine.CohortRequest) error {
	rows, err := f.GetRows(SheetPhenotypes)
	if err != nil {
		return nil // optional sheet
	}
	if len(rows) < 2 {
		return nil
	}

	for i, row := range rows[1:] {
		if len(row) < 5 {
			continue
		}
		phenotype := strings.TrimSpace(row[0])
		if phenotype == "" {
			return errors.DataFormat(rowErr(SheetPhenotypes, i+2, "empty phenotype"))
		}
		counts := make([]int, 4)
		for j := 0; j < 4; j++ {
			v, err := parseIntCell(row[j+1])
			if err != nil {
				return errors.DataFormat(rowErr(SheetPhenotypes, i+2, "bad count: "+err.Error()))
			}
			counts[j] = v
		}
		req.Phenotypes = append(req.Phenotypes, domainstats.PhenotypeCounts{
			Phenotype:     core.PhenotypeKey(phenotype),
			Group1Present: counts[0],
			Group1Total:   counts[1],
			Group2Present: counts[2],
			Group2Total:   counts[3],
		})
	}
	return nil
}

func rowErr(sheet string, row int, msg string) string {
	return fmt.Sprintf("sheet %q row %d: %s", sheet, row, msg)
}

func parseFloatCell(cell string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}

func parseIntCell(cell string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(cell))
}

func parseBoolCell(cell string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true", "yes", "event":
		return true, nil
	case "0", "false", "no", "censored":
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %q", cell)
	}
}
