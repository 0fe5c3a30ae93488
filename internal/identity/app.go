package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/altinukshini/gha-reaper/internal/api"
	"github.com/altinukshini/gha-reaper/internal/model"
	"github.com/altinukshini/gha-reaper/internal/reaper"
)

const (
	// tokenRotationMargin is how long before expiry an installation
	// token is replaced.
	tokenRotationMargin = 5 * time.Minute
	defaultPageSize     = 100
)

type AppConfig struct {
	AppID      int64
	PrivateKey []byte
	Host       string
	// Transport is the base HTTP transport; nil means the default.
	Transport http.RoundTripper
	Now       func() time.Time
	Logger    *slog.Logger
	PageSize  int
}

// AppEnumerator walks the installations of a GitHub App and the
// repositories each one grants.
type AppEnumerator struct {
	appID     int64
	key       *rsa.PrivateKey
	host      string
	transport http.RoundTripper
	now       func() time.Time
	logger    *slog.Logger
	pageSize  int

	app *api.Client
}

func NewAppEnumerator(cfg AppConfig) (*AppEnumerator, error) {
	if cfg.AppID == 0 || len(cfg.PrivateKey) == 0 {
		return nil, ErrNoCredentials
	}
	key, err := ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	e := &AppEnumerator{
		appID:     cfg.AppID,
		key:       key,
		host:      cfg.Host,
		transport: cfg.Transport,
		now:       cfg.Now,
		logger:    cfg.Logger,
		pageSize:  cfg.PageSize,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.pageSize <= 0 {
		e.pageSize = defaultPageSize
	}

	// The token here only keeps go-gh from reading the gh config; the
	// transport sends a fresh JWT on every request.
	e.app, err = api.NewClient(api.Options{
		Host:      cfg.Host,
		Token:     "app-jwt",
		Transport: newAuthTransport(cfg.Transport, e.jwtAuthorization),
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (e *AppEnumerator) jwtAuthorization(context.Context) (string, error) {
	jwt, err := signJWT(e.key, e.appID, e.now())
	if err != nil {
		return "", err
	}
	return "Bearer " + jwt, nil
}

// Authenticate confirms the key belongs to the App.
func (e *AppEnumerator) Authenticate(ctx context.Context) (*model.App, error) {
	app, err := e.app.GetApp(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate app %d: %w", e.appID, err)
	}
	e.logger.Info("authenticated as", "app", app.Name, "slug", app.Slug)
	return app, nil
}

// Installations authenticates, then yields every installation page by
// page until a short page.
func (e *AppEnumerator) Installations(ctx context.Context) iter.Seq2[model.Installation, error] {
	return func(yield func(model.Installation, error) bool) {
		if _, err := e.Authenticate(ctx); err != nil {
			yield(model.Installation{}, err)
			return
		}
		for page := 1; ; page++ {
			installations, err := e.app.ListInstallations(ctx, e.pageSize, page)
			if err != nil {
				yield(model.Installation{}, err)
				return
			}
			for _, inst := range installations {
				if !yield(inst, nil) {
					return
				}
			}
			if len(installations) < e.pageSize {
				return
			}
		}
	}
}

// Repositories yields the repositories of one installation. Every target
// shares a client authorized by that installation's token.
func (e *AppEnumerator) Repositories(ctx context.Context, inst model.Installation) iter.Seq2[reaper.Target, error] {
	return func(yield func(reaper.Target, error) bool) {
		tokens := &installationTokens{app: e.app, installationID: inst.ID, now: e.now}
		client, err := api.NewClient(api.Options{
			Host:      e.host,
			Token:     "installation-token",
			Transport: newAuthTransport(e.transport, tokens.authorization),
		})
		if err != nil {
			yield(reaper.Target{}, err)
			return
		}

		var seen int
		for page := 1; ; page++ {
			resp, err := client.ListInstallationRepositories(ctx, e.pageSize, page)
			if err != nil {
				yield(reaper.Target{}, fmt.Errorf("installation %d: %w", inst.ID, err))
				return
			}
			for _, repo := range resp.Repositories {
				if !yield(reaper.Target{Installation: inst, Repository: repo, Client: client}, nil) {
					return
				}
			}
			seen += len(resp.Repositories)
			if seen >= resp.TotalCount || len(resp.Repositories) == 0 {
				return
			}
		}
	}
}

// installationTokens caches one installation's access token and replaces
// it shortly before it expires.
type installationTokens struct {
	app            *api.Client
	installationID int64
	now            func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func (s *installationTokens) authorization(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt.Add(-tokenRotationMargin)) {
		return "token " + s.token, nil
	}
	tok, err := s.app.CreateInstallationToken(ctx, s.installationID)
	if err != nil {
		return "", err
	}
	if tok.ExpiresAt.IsZero() {
		return "", errors.New("installation token has no expiry")
	}
	s.token = tok.Token
	s.expiresAt = tok.ExpiresAt
	return "token " + s.token, nil
}
