package api

import (
	"context"
	"fmt"
	"net/http"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

// APIVersion is sent as X-GitHub-Api-Version on every request.
const APIVersion = "2022-11-28"

const DefaultHost = "github.com"

type Options struct {
	// Host is the GitHub hostname; "github.com" or a GHES host.
	Host  string
	Token string
	// Transport replaces the underlying HTTP transport. go-gh still
	// layers its header round tripper on top of it.
	Transport http.RoundTripper
}

type Client struct {
	rest *ghAPI.RESTClient
}

func NewClient(opts Options) (*Client, error) {
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	rest, err := ghAPI.NewRESTClient(ghAPI.ClientOptions{
		Host:         host,
		AuthToken:    opts.Token,
		Headers:      map[string]string{"X-GitHub-Api-Version": APIVersion},
		Transport:    opts.Transport,
		LogIgnoreEnv: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create GitHub client for %s: %w", host, err)
	}
	return &Client{rest: rest}, nil
}

// NewGHClient authenticates with the credentials stored by the gh CLI.
func NewGHClient() (*Client, error) {
	rest, err := ghAPI.NewRESTClient(ghAPI.ClientOptions{
		Headers: map[string]string{"X-GitHub-Api-Version": APIVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client (is gh authenticated?): %w", err)
	}
	return &Client{rest: rest}, nil
}

func repoPath(repo, path string) string {
	return fmt.Sprintf("repos/%s/%s", repo, path)
}

func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.rest.DoWithContext(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) Post(ctx context.Context, path string, result interface{}) error {
	return c.rest.DoWithContext(ctx, http.MethodPost, path, nil, result)
}
