package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvalLogTracksBest(t *testing.T) {
	params := NewParamVector()
	path := filepath.Join(t.TempDir(), "optimize_log.csv")

	l, err := newEvalLog(path, params)
	if err != nil {
		t.Fatalf("newEvalLog: %v", err)
	}

	first := params.DefaultVector()
	better := params.Clamp(make([]float64, params.Dim()))
	l.record(-1, first)
	l.record(-3, better)
	l.record(-2, first)
	l.close()

	if l.count != 3 {
		t.Errorf("count = %d, want 3", l.count)
	}
	if l.bestFitness != -3 {
		t.Errorf("bestFitness = %v, want -3", l.bestFitness)
	}
	if diff := cmp.Diff(better, l.best); diff != "" {
		t.Errorf("best params mismatch (-want +got):\n%s", diff)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("log has %d rows, want header + 3", len(rows))
	}
	if len(rows[0]) != 2+params.Dim() || rows[0][2] != params.Specs[0].Name {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][0] != "2" || rows[2][1] != "-3.000000" {
		t.Errorf("second row = %v", rows[2])
	}
}
