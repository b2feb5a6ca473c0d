package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/client/client"
	"github.com/dmitrijs2005/vidtube/internal/client/config"
)

type App struct {
	config   *config.Config
	client   client.Client
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run probes the server, then serves the REPL on stdin until exit.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := a.client.Ping(pingCtx); err != nil {
		log.Printf("server %s is not reachable yet: %v", a.config.ServerEndpointAddr, err)
	}
	cancel()

	log.Println("Welcome to vidtube CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

// withTimeout bounds a single server call by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) getStatus() string {
	if a.userName == "" || !a.isLoggedIn() {
		return ""
	}
	return "(" + a.userName + ")"
}
