// Package identity turns credentials into a reaper.Enumerator.
//
// App mode authenticates as a GitHub App with a signed JWT, walks every
// installation, and gives each installation's repositories a client that
// carries a short-lived installation token. Token mode uses one static
// token (or the gh CLI login) against an explicit repository list.
package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/altinukshini/gha-reaper/internal/api"
	"github.com/altinukshini/gha-reaper/internal/reaper"
)

var (
	ErrNoCredentials  = errors.New("no credentials: set an App id and private key, a token, or log in with gh")
	ErrNoRepositories = errors.New("token mode needs at least one repository")
)

// Credentials selects the identity mode. App credentials win over a token.
type Credentials struct {
	AppID      int64
	PrivateKey []byte
	Token      string
	// UseGH falls back to the gh CLI login when no token is given.
	UseGH bool
	Repos []string

	Host      string
	Transport http.RoundTripper
	Now       func() time.Time
	Logger    *slog.Logger
}

func (c Credentials) hasApp() bool {
	return c.AppID != 0 && len(c.PrivateKey) > 0
}

// NewEnumerator builds the enumerator for whichever credentials are set.
func NewEnumerator(creds Credentials) (reaper.Enumerator, error) {
	switch {
	case creds.hasApp():
		enum, err := NewAppEnumerator(AppConfig{
			AppID:      creds.AppID,
			PrivateKey: creds.PrivateKey,
			Host:       creds.Host,
			Transport:  creds.Transport,
			Now:        creds.Now,
			Logger:     creds.Logger,
		})
		if err != nil {
			return nil, err
		}
		return enum, nil
	case creds.Token != "":
		client, err := api.NewClient(api.Options{Host: creds.Host, Token: creds.Token, Transport: creds.Transport})
		if err != nil {
			return nil, err
		}
		return tokenEnumerator(client, creds)
	case creds.UseGH:
		client, err := api.NewGHClient()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
		}
		return tokenEnumerator(client, creds)
	default:
		return nil, ErrNoCredentials
	}
}

func tokenEnumerator(client *api.Client, creds Credentials) (reaper.Enumerator, error) {
	enum, err := NewTokenEnumerator(client, creds.Repos, creds.Logger)
	if err != nil {
		return nil, err
	}
	return enum, nil
}
