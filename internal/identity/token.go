package identity

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/altinukshini/gha-reaper/internal/api"
	"github.com/altinukshini/gha-reaper/internal/model"
	"github.com/altinukshini/gha-reaper/internal/reaper"
)

// TokenEnumerator serves a fixed repository list with one client. It
// yields a single installation standing for the token's owner.
type TokenEnumerator struct {
	client *api.Client
	repos  []model.Repository
	logger *slog.Logger
}

func NewTokenEnumerator(client *api.Client, repos []string, logger *slog.Logger) (*TokenEnumerator, error) {
	if len(repos) == 0 {
		return nil, ErrNoRepositories
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &TokenEnumerator{client: client, logger: logger}
	for _, full := range repos {
		owner, name, ok := strings.Cut(full, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return nil, fmt.Errorf("invalid repository %q: want owner/name", full)
		}
		e.repos = append(e.repos, model.Repository{Name: name, FullName: full})
	}
	return e, nil
}

func (e *TokenEnumerator) Installations(ctx context.Context) iter.Seq2[model.Installation, error] {
	return func(yield func(model.Installation, error) bool) {
		e.logger.Debug("using token credentials", "repositories", len(e.repos))
		yield(model.Installation{Account: model.Account{Login: "token"}}, nil)
	}
}

func (e *TokenEnumerator) Repositories(ctx context.Context, inst model.Installation) iter.Seq2[reaper.Target, error] {
	return func(yield func(reaper.Target, error) bool) {
		for _, repo := range e.repos {
			if !yield(reaper.Target{Installation: inst, Repository: repo, Client: e.client}, nil) {
				return
			}
		}
	}
}
