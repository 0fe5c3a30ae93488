package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/altinukshini/gha-reaper/internal/model"
)

func pageQuery(perPage, page int) string {
	v := url.Values{}
	v.Set("per_page", strconv.Itoa(perPage))
	v.Set("page", strconv.Itoa(page))
	return "?" + v.Encode()
}

// GetApp returns the App the client is authenticated as. Requires JWT
// authentication.
func (c *Client) GetApp(ctx context.Context) (*model.App, error) {
	var app model.App
	if err := c.Get(ctx, "app", &app); err != nil {
		return nil, fmt.Errorf("get app: %w", err)
	}
	return &app, nil
}

// ListInstallations returns one page of the App's installations. The
// endpoint returns a bare array, so callers stop on a short page.
func (c *Client) ListInstallations(ctx context.Context, perPage, page int) ([]model.Installation, error) {
	var installations []model.Installation
	if err := c.Get(ctx, "app/installations"+pageQuery(perPage, page), &installations); err != nil {
		return nil, fmt.Errorf("list installations page %d: %w", page, err)
	}
	return installations, nil
}

// CreateInstallationToken exchanges the App JWT for an installation
// access token.
func (c *Client) CreateInstallationToken(ctx context.Context, installationID int64) (*model.InstallationToken, error) {
	var token model.InstallationToken
	path := fmt.Sprintf("app/installations/%d/access_tokens", installationID)
	if err := c.Post(ctx, path, &token); err != nil {
		return nil, fmt.Errorf("create token for installation %d: %w", installationID, err)
	}
	if token.Token == "" {
		return nil, fmt.Errorf("create token for installation %d: empty token in response", installationID)
	}
	return &token, nil
}

// ListInstallationRepositories returns one page of the repositories
// reachable with an installation token.
func (c *Client) ListInstallationRepositories(ctx context.Context, perPage, page int) (*model.InstallationRepositories, error) {
	var resp model.InstallationRepositories
	if err := c.Get(ctx, "installation/repositories"+pageQuery(perPage, page), &resp); err != nil {
		return nil, fmt.Errorf("list installation repositories page %d: %w", page, err)
	}
	return &resp, nil
}
