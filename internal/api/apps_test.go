package api

import (
	"net/http"
	"testing"
)

func TestAppEndpoints(t *testing.T) {
	client, _ := newTestClient(t, map[string]fakeResponse{
		"GET /app":                                           {status: http.StatusOK, body: `{"id": 5, "slug": "reaper", "name": "Reaper"}`},
		"GET /app/installations?page=1&per_page=100":         {status: http.StatusOK, body: `[{"id": 11, "account": {"login": "acme"}}]`},
		"POST /app/installations/11/access_tokens":           {status: http.StatusCreated, body: `{"token": "ghs_abc", "expires_at": "2030-01-01T00:00:00Z"}`},
		"GET /installation/repositories?page=1&per_page=100": {status: http.StatusOK, body: `{"total_count": 1, "repositories": [{"id": 3, "full_name": "acme/api"}]}`},
	})
	ctx := t.Context()

	app, err := client.GetApp(ctx)
	if err != nil {
		t.Fatalf("GetApp: %v", err)
	}
	if app.Name != "Reaper" {
		t.Errorf("GetApp().Name = %q, want Reaper", app.Name)
	}

	installations, err := client.ListInstallations(ctx, 100, 1)
	if err != nil {
		t.Fatalf("ListInstallations: %v", err)
	}
	if len(installations) != 1 || installations[0].Account.Login != "acme" {
		t.Errorf("ListInstallations() = %+v", installations)
	}

	token, err := client.CreateInstallationToken(ctx, 11)
	if err != nil {
		t.Fatalf("CreateInstallationToken: %v", err)
	}
	if token.Token != "ghs_abc" || token.ExpiresAt.Year() != 2030 {
		t.Errorf("CreateInstallationToken() = %+v", token)
	}

	repos, err := client.ListInstallationRepositories(ctx, 100, 1)
	if err != nil {
		t.Fatalf("ListInstallationRepositories: %v", err)
	}
	if repos.TotalCount != 1 || repos.Repositories[0].FullName != "acme/api" {
		t.Errorf("ListInstallationRepositories() = %+v", repos)
	}
}

func TestCreateInstallationTokenRejectsEmptyToken(t *testing.T) {
	client, _ := newTestClient(t, map[string]fakeResponse{
		"POST /app/installations/1/access_tokens": {status: http.StatusCreated, body: `{}`},
	})
	if _, err := client.CreateInstallationToken(t.Context(), 1); err == nil {
		t.Error("CreateInstallationToken() with empty token succeeded, want error")
	}
}
