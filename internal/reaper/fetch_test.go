package reaper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/altinukshini/gha-reaper/internal/model"
)

func TestNewWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, time.FixedZone("PKT", 5*3600))

	w := NewWindow(now, 2)
	if got, want := w.Created(), ">2024-03-07"; got != want {
		t.Errorf("Created() = %q, want %q", got, want)
	}
	if !w.Now.Equal(now) {
		t.Errorf("Now = %v, want %v", w.Now, now)
	}
}

func TestFetchRunsPageCount(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantCalls int
	}{
		{name: "single partial page", total: 1, pageSize: 100, wantCalls: 1},
		{name: "exact multiple", total: 200, pageSize: 100, wantCalls: 2},
		{name: "partial last page", total: 250, pageSize: 100, wantCalls: 3},
		{name: "tiny pages", total: 7, pageSize: 3, wantCalls: 3},
		{name: "no runs", total: 0, pageSize: 100, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &generatedClient{total: tt.total}
			window := NewWindow(testNow, 2)

			runs, err := FetchRuns(t.Context(), client, "o/r", window, FetchOptions{PageSize: tt.pageSize})
			if err != nil {
				t.Fatalf("FetchRuns() error: %v", err)
			}
			if len(runs) != tt.total {
				t.Errorf("FetchRuns() returned %d runs, want %d", len(runs), tt.total)
			}
			if len(client.calls) != tt.wantCalls {
				t.Errorf("FetchRuns() made %d page requests, want %d", len(client.calls), tt.wantCalls)
			}
			for i, call := range client.calls {
				if call.Page != i+1 {
					t.Errorf("request %d asked for page %d, want %d", i, call.Page, i+1)
				}
				if call.PerPage != tt.pageSize || call.Created != window.Created() {
					t.Errorf("request %d = %+v, want per_page=%d created=%s", i, call, tt.pageSize, window.Created())
				}
			}
		})
	}
}

func TestFetchRunsDefaultsPageSize(t *testing.T) {
	client := &generatedClient{total: 1}
	if _, err := FetchRuns(t.Context(), client, "o/r", NewWindow(testNow, 1), FetchOptions{}); err != nil {
		t.Fatalf("FetchRuns() error: %v", err)
	}
	if client.calls[0].PerPage != DefaultPageSize {
		t.Errorf("per_page = %d, want %d", client.calls[0].PerPage, DefaultPageSize)
	}
}

func TestFetchRunsKeepsRunsBeforeFailedPage(t *testing.T) {
	client := &generatedClient{total: 350, failPage: 3}

	runs, err := FetchRuns(t.Context(), client, "o/r", NewWindow(testNow, 2), FetchOptions{PageSize: 100})
	if len(runs) != 200 {
		t.Errorf("FetchRuns() returned %d runs, want 200 from pages 1-2", len(runs))
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("FetchRuns() error = %v, want *FetchError", err)
	}
	if fetchErr.Page != 3 || fetchErr.Fetched != 200 || fetchErr.Repository != "o/r" {
		t.Errorf("FetchError = %+v, want page 3 after 200 runs", fetchErr)
	}
	if len(client.calls) != 3 {
		t.Errorf("made %d requests, want 3", len(client.calls))
	}
}

func TestFetchRunsFirstPageFailure(t *testing.T) {
	client := newFakeClient().addFailure("o/r", errors.New("HTTP 404"))

	runs, err := FetchRuns(t.Context(), client, "o/r", NewWindow(testNow, 2), FetchOptions{})
	if err == nil {
		t.Fatal("FetchRuns() succeeded, want error")
	}
	if len(runs) != 0 {
		t.Errorf("FetchRuns() returned %d runs, want 0", len(runs))
	}
}

func TestFetchRunsFollowsTotalCountDrift(t *testing.T) {
	client := newFakeClient().
		addPage("o/r", 4, run(1, model.RunStatusInProgress, time.Hour), run(2, model.RunStatusInProgress, time.Hour)).
		addPage("o/r", 3, run(3, model.RunStatusInProgress, time.Hour))

	runs, err := FetchRuns(t.Context(), client, "o/r", NewWindow(testNow, 2), FetchOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("FetchRuns() error: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("FetchRuns() returned %d runs, want 3", len(runs))
	}
	if len(client.listCalls) != 2 {
		t.Errorf("made %d requests, want 2", len(client.listCalls))
	}
	for i, r := range runs {
		if r.ID != int64(i+1) {
			t.Errorf("runs[%d].ID = %d, want %d (page order)", i, r.ID, i+1)
		}
	}
}

func TestFetchRunsStopsOnEmptyPage(t *testing.T) {
	client := newFakeClient().
		addPage("o/r", 5000, run(1, model.RunStatusInProgress, time.Hour)).
		addPage("o/r", 5000)

	runs, err := FetchRuns(t.Context(), client, "o/r", NewWindow(testNow, 2), FetchOptions{PageSize: 1})
	if !errors.Is(err, ErrEmptyPage) {
		t.Fatalf("FetchRuns() error = %v, want ErrEmptyPage", err)
	}
	if len(runs) != 1 {
		t.Errorf("FetchRuns() returned %d runs, want 1", len(runs))
	}
}

func TestFetchRunsAppliesRequestTimeout(t *testing.T) {
	runs, err := FetchRuns(context.Background(), blockingClient{}, "o/r", NewWindow(testNow, 2), FetchOptions{RequestTimeout: 10 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("FetchRuns() error = %v, want deadline exceeded", err)
	}
	if len(runs) != 0 {
		t.Errorf("FetchRuns() returned %d runs, want 0", len(runs))
	}
}
