// Package cli implements the interactive zkauth command-line client.
package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dmitrijs2005/zkauth/internal/client/api"
	"github.com/dmitrijs2005/zkauth/internal/client/config"
	"github.com/dmitrijs2005/zkauth/internal/client/services"
	"github.com/dmitrijs2005/zkauth/internal/client/storage"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	userName    string
	token       *api.Token
	reader      *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	saltPath, err := storage.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("initializing salt store: %w", err)
	}

	apiClient := api.NewClient(c.ServerURL, c.RequestTimeout)
	as := services.NewAuthService(apiClient, storage.NewFileSaltStore(saltPath))

	return &App{config: c, authService: as, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.token != nil
}
