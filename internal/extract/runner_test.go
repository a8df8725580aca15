package extract

import (
	"context"
	"errors"
	"testing"
)

func TestRunnerSkipsMissingSources(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()
	writeSourceFile(t, sourceDir, "hcmc_pass2.txt",
		"--- Page 1 ---\nProject Name: The Emerald\n1BR: 50 - 55\n")

	r := &Runner{SourceDir: sourceDir, OutputDir: outputDir, Workers: 2}
	combined, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if combined["market_unit_types.json"] != 1 {
		t.Errorf("combined[market_unit_types.json] = %d, want 1", combined["market_unit_types.json"])
	}
	if combined["price_factors.json"] != 0 {
		t.Errorf("combined[price_factors.json] = %d, want 0", combined["price_factors.json"])
	}
	if _, ok := combined["segment_summaries.json"]; !ok {
		t.Error("combined missing segment_summaries.json; price driver should run with all sources absent")
	}
	if _, ok := combined["casestudy_blocks.json"]; ok {
		t.Error("combined has casestudy_blocks.json; case study driver should be skipped when its source is missing")
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{SourceDir: t.TempDir(), OutputDir: t.TempDir()}
	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
