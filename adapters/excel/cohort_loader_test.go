package excel

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"phenostats/domain/core"
	"phenostats/internal/errors"
)

func writeWorkbook(t *testing.T, sheets map[string][][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet %s: %v", name, err)
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row %d of %s: %v", i+1, name, err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "cohort.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoad_FullWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		SheetVariants: {
			{"group", "distance"},
			{"carriers", 1.5},
			{"controls", 8.2},
			{"carriers", 3.0},
			{"controls", 11.4},
		},
		SheetSurvival: {
			{"group", "time", "event"},
			{"carriers", 2.0, "event"},
			{"carriers", 5.0, "censored"},
			{"controls", 9.0, 1},
		},
		SheetPhenotypes: {
			{"phenotype", "group1_present", "group1_total", "group2_present", "group2_total"},
			{"seizures", 8, 10, 1, 10},
		},
	})

	req, err := NewCohortLoader(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if req.Group1Name != core.GroupName("carriers") || req.Group2Name != core.GroupName("controls") {
		t.Errorf("group order must follow first appearance, got %s/%s", req.Group1Name, req.Group2Name)
	}
	if len(req.Group1Distances) != 2 || len(req.Group2Distances) != 2 {
		t.Errorf("expected 2+2 distances, got %d+%d", len(req.Group1Distances), len(req.Group2Distances))
	}
	if req.Group1Distances[0] != 1.5 || req.Group1Distances[1] != 3.0 {
		t.Errorf("unexpected carrier distances %v", req.Group1Distances)
	}

	if len(req.SurvivalGroups) != 2 {
		t.Fatalf("expected 2 survival groups, got %d", len(req.SurvivalGroups))
	}
	carriers := req.SurvivalGroups[0]
	if len(carriers.Subjects) != 2 || !carriers.Subjects[0].Event || carriers.Subjects[1].Event {
		t.Errorf("unexpected carrier subjects %+v", carriers.Subjects)
	}

	if len(req.Phenotypes) != 1 {
		t.Fatalf("expected 1 phenotype row, got %d", len(req.Phenotypes))
	}
	ph := req.Phenotypes[0]
	if ph.Phenotype != core.PhenotypeKey("seizures") || ph.Group1Present != 8 || ph.Group2Total != 10 {
		t.Errorf("unexpected phenotype row %+v", ph)
	}
}

func TestLoad_VariantsOnly(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		SheetVariants: {
			{"group", "distance"},
			{"a", 1.0},
			{"b", 2.0},
		},
	})

	req, err := NewCohortLoader(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(req.SurvivalGroups) != 0 || len(req.Phenotypes) != 0 {
		t.Errorf("optional sheets must stay empty, got %d survival groups and %d phenotypes",
			len(req.SurvivalGroups), len(req.Phenotypes))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewCohortLoader(filepath.Join(t.TempDir(), "absent.xlsx")).Load()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.GetCode(err) != errors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", errors.GetCode(err))
	}
}

func TestLoad_MissingVariantsSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		SheetSurvival: {
			{"group", "time", "event"},
			{"a", 1.0, 1},
		},
	})

	_, err := NewCohortLoader(path).Load()
	if err == nil {
		t.Fatal("expected error without a variants sheet")
	}
	if errors.GetCode(err) != errors.CodeDataFormat {
		t.Errorf("expected DATA_FORMAT, got %s", errors.GetCode(err))
	}
}

func TestLoad_WrongGroupCount(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		SheetVariants: {
			{"group", "distance"},
			{"only", 1.0},
			{"only", 2.0},
		},
	})

	if _, err := NewCohortLoader(path).Load(); err == nil {
		t.Fatal("expected error for a single-group variants sheet")
	}
}

func TestLoad_BadCells(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		SheetVariants: {
			{"group", "distance"},
			{"a", "not-a-number"},
			{"b", 2.0},
		},
	})

	_, err := NewCohortLoader(path).Load()
	if err == nil {
		t.Fatal("expected error for malformed distance cell")
	}
	if errors.GetCode(err) != errors.CodeDataFormat {
		t.Errorf("expected DATA_FORMAT, got %s", errors.GetCode(err))
	}
}
