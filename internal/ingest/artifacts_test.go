package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-pipeline/internal/extract"
)

func TestLoadArtifact(t *testing.T) {
	dir := t.TempDir()
	content := `[
	  {
	    "project_name": "Eaton Park",
	    "block_name": "A1",
	    "floors": 30,
	    "floor_functions": [],
	    "_meta": {"source_file": "hcmc_casestudy_full.txt", "page": 3, "confidence": 0.9}
	  }
	]`
	if err := os.WriteFile(filepath.Join(dir, "casestudy_blocks.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var records []extract.BlockRecord
	if err := loadArtifact(dir, "casestudy_blocks.json", &records); err != nil {
		t.Fatalf("loadArtifact returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ProjectName != "Eaton Park" || rec.BlockName != "A1" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Floors == nil || *rec.Floors != 30 {
		t.Errorf("expected floors 30, got %v", rec.Floors)
	}
	if rec.Meta.SourceFile != "hcmc_casestudy_full.txt" {
		t.Errorf("unexpected source file %q", rec.Meta.SourceFile)
	}
	if rec.Meta.Page == nil || *rec.Meta.Page != 3 {
		t.Errorf("expected page 3, got %v", rec.Meta.Page)
	}
	if rec.Meta.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", rec.Meta.Confidence)
	}
}

func TestLoadArtifactMissing(t *testing.T) {
	var records []extract.BlockRecord
	err := loadArtifact(t.TempDir(), "casestudy_blocks.json", &records)
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadArtifactMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	var records []extract.BlockRecord
	if err := loadArtifact(dir, "bad.json", &records); err == nil {
		t.Fatal("expected error for malformed artifact")
	}
}
