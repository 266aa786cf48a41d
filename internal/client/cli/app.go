// Package cli implements the interactive identity CLI: a small REPL for
// registering, logging in, and inspecting the authenticated account.
package cli

import (
	"bufio"
	"os"

	"github.com/isaidso/auth/internal/client/api"
	"github.com/isaidso/auth/internal/client/config"
	"github.com/isaidso/auth/internal/client/session"
	"github.com/isaidso/auth/internal/client/storage"
)

type App struct {
	config  *config.Config
	client  *api.Client
	session *session.Manager
	reader  *bufio.Reader
}

func NewApp(c *config.Config) *App {
	client := api.NewClient(c.ServerBaseURL)

	store := storage.NewFileStore(c.TokenFile)
	mgr := session.NewManager(store, nil, client.Renew)
	client.UseSession(mgr)

	return &App{config: c, client: client, session: mgr, reader: bufio.NewReader(os.Stdin)}
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}
