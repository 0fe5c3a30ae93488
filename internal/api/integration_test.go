package api

import (
	"os"
	"testing"
)

func TestIntegrationListRuns(t *testing.T) {
	if os.Getenv("GHA_REAPER_INTEGRATION") == "" {
		t.Skip("Set GHA_REAPER_INTEGRATION=1 to run integration tests")
	}

	client, err := NewGHClient()
	if err != nil {
		t.Fatalf("NewGHClient: %v", err)
	}

	resp, err := client.ListRuns(t.Context(), "cli/cli", RunsFilter{PerPage: 5, Page: 1})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}

	if resp.TotalCount == 0 {
		t.Error("expected at least 1 run")
	}
	if len(resp.Runs) == 0 {
		t.Error("expected runs in response")
	}

	t.Logf("Found %d total runs, got %d in page", resp.TotalCount, len(resp.Runs))
	for _, r := range resp.Runs {
		t.Logf("  #%d %s [%s] started %s", r.RunNumber, r.DisplayTitle, r.Status, r.RunStartedAt)
	}
}
