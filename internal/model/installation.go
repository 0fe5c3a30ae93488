package model

import "time"

// App is the authenticated GitHub App, as returned by GET /app.
type App struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Account struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Installation is one authorization scope of the App over a set of
// repositories.
type Installation struct {
	ID      int64   `json:"id"`
	Account Account `json:"account"`
}

type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Archived bool   `json:"archived"`
}

type InstallationRepositories struct {
	TotalCount   int          `json:"total_count"`
	Repositories []Repository `json:"repositories"`
}

// InstallationToken is a short-lived access token for one installation.
type InstallationToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
