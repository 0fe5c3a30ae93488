package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/altinukshini/gha-reaper/internal/model"
)

var testRows = []model.AuditRow{
	{Repository: "acme/api", DisplayTitle: "Deploy", RunNumber: 7, RunID: 1, ElapsedSeconds: 7200, WasStopped: true},
	{Repository: "acme/api", DisplayTitle: "Nightly", RunNumber: 8, RunID: 2, ElapsedSeconds: 90000, Error: "HTTP 409"},
	{Repository: "acme/web", DisplayTitle: "CI", RunNumber: 9, RunID: 3, ElapsedSeconds: 3601, DryRun: true},
}

var testMeta = Meta{InvocationID: "inv-1", GeneratedAt: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}

func TestReportConcurrentAppend(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Append(model.AuditRow{RunID: int64(i)})
		}()
	}
	wg.Wait()

	rows := r.Rows()
	if len(rows) != 50 {
		t.Fatalf("Rows() has %d rows, want 50", len(rows))
	}
	rows[0].Repository = "mutated"
	if r.Rows()[0].Repository == "mutated" {
		t.Error("Rows() should return a copy")
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(testRows)
	want := Summary{Candidates: 3, Stopped: 1, Failed: 1, DryRun: 1}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestOutcomeAndElapsed(t *testing.T) {
	tests := []struct {
		row     model.AuditRow
		outcome string
		elapsed string
	}{
		{testRows[0], "stopped", "2 hours"},
		{testRows[1], "failed", "1 day"},
		{testRows[2], "dry run", "1 hour"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.row); got != tt.outcome {
			t.Errorf("Outcome(run %d) = %q, want %q", tt.row.RunID, got, tt.outcome)
		}
		if got := Elapsed(tt.row.ElapsedSeconds); got != tt.elapsed {
			t.Errorf("Elapsed(%v) = %q, want %q", tt.row.ElapsedSeconds, got, tt.elapsed)
		}
	}
}

func TestTable(t *testing.T) {
	out := Table(testRows)
	for _, want := range []string{"acme/api", "Nightly", "#9", "stopped", "failed", "dry run", "3 candidates"} {
		if !strings.Contains(out, want) {
			t.Errorf("Table() missing %q:\n%s", want, out)
		}
	}
	if got := Table(nil); !strings.Contains(got, "0 candidates") {
		t.Errorf("Table(nil) = %q", got)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "json", testMeta, testRows); err != nil {
		t.Fatalf("Render(json) error: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc.InvocationID != "inv-1" || len(doc.Rows) != 3 || doc.Summary.Stopped != 1 {
		t.Errorf("document = %+v", doc)
	}
	if doc.Rows[1].Error != "HTTP 409" {
		t.Errorf("row error = %q, want HTTP 409", doc.Rows[1].Error)
	}
}

func TestRenderJSONEmptyRows(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "json", testMeta, nil); err != nil {
		t.Fatalf("Render(json) error: %v", err)
	}
	if !strings.Contains(buf.String(), `"rows": []`) {
		t.Errorf("empty report should render rows as []:\n%s", buf.String())
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "yaml", testMeta, testRows); err != nil {
		t.Fatalf("Render(yaml) error: %v", err)
	}
	var doc struct {
		InvocationID string           `yaml:"invocation_id"`
		Rows         []model.AuditRow `yaml:"rows"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if doc.InvocationID != "inv-1" || len(doc.Rows) != 3 || !doc.Rows[2].DryRun {
		t.Errorf("document = %+v", doc)
	}
}

func TestRenderHTML(t *testing.T) {
	rows := append([]model.AuditRow{{Repository: "acme/x", DisplayTitle: "<script>alert(1)</script>"}}, testRows...)
	var buf bytes.Buffer
	if err := Render(&buf, "html", testMeta, rows); err != nil {
		t.Fatalf("Render(html) error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<table>", "<th>Repository</th>", "<td>acme/web</td>", "inv-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("HTML report must not pass through raw markup from run titles")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if err := Render(&bytes.Buffer{}, "pdf", testMeta, nil); err == nil {
		t.Error("Render(pdf) should fail")
	}
}

func TestSetOutput(t *testing.T) {
	orig := newDelimiter
	newDelimiter = func() string { return "ghadelimiter_fixed" }
	t.Cleanup(func() { newDelimiter = orig })

	path := filepath.Join(t.TempDir(), "output")
	if err := os.WriteFile(path, []byte("earlier=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SetOutput(path, "report", "| a |\n| - |"); err != nil {
		t.Fatalf("SetOutput() error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "earlier=1\nreport<<ghadelimiter_fixed\n| a |\n| - |\nghadelimiter_fixed\n"
	if string(got) != want {
		t.Errorf("output file = %q, want %q", got, want)
	}

	if err := SetOutput(path, "report", "contains ghadelimiter_fixed"); err == nil {
		t.Error("SetOutput() accepted a value containing the delimiter")
	}
}

func TestAppendStepSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	if err := AppendStepSummary(path, "Reaped runs", "| a |"); err != nil {
		t.Fatalf("AppendStepSummary() error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "## Reaped runs\n\n| a |\n\n" {
		t.Errorf("summary = %q", got)
	}
}
