package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/client/client"
	"github.com/dmitrijs2005/pointfeed/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	client   client.Client
	userName string
	Mode     Mode
	reader   *bufio.Reader
	out      io.Writer

	watchMu     sync.Mutex
	stopWatcher context.CancelFunc
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewFeedClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	defer a.Unwatch(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.client.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" && a.isLoggedIn() {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

// Root runs the REPL on stdin.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to pointfeed CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
