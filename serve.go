package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/knights-tour/api"
	"github.com/wricardo/knights-tour/tour/config"
	"github.com/wricardo/knights-tour/tour/service"
	"github.com/wricardo/knights-tour/tour/session"
	"github.com/wricardo/knights-tour/transport/mcp"
	"github.com/wricardo/knights-tour/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"
)

const (
	sessionMaxAge       = 24 * time.Hour
	sessionCleanupEvery = time.Hour
	sessionSyncEvery    = 5 * time.Second
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and /mcp endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:  "sessions-dir",
				Value: "sessions",
				Usage: "directory where tour sessions are persisted",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServer,
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "run an MCP stdio server, starting an internal HTTP API when none is running",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "port of an already running API server to reuse",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:  "sessions-dir",
				Value: "sessions",
				Usage: "directory where tour sessions are persisted",
			},
		},
		Action: runStdioMCP,
	}
}

// services holds everything initializeServices wires together
type services struct {
	tour        service.TourService
	sessions    *session.Manager
	persistence session.SessionPersistence
}

// initializeServices wires the config and session managers into the tour
// service and restores persisted sessions.
func initializeServices(configDir, sessionsDir string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logrus.WithError(err).Warn("failed to load persisted sessions")
	}

	return &services{
		tour:        service.NewTourService(sessionManager, configManager),
		sessions:    sessionManager,
		persistence: persistence,
	}, nil
}

// newHandler mounts the REST API and the /mcp endpoint. The MCP tools call
// back into the API at baseURL.
func newHandler(tourService service.TourService, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(tourService, hub)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})

	return mainRouter
}

// runServer serves HTTP until SIGINT or SIGTERM
func runServer(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := initializeServices(cmd.String("config-dir"), cmd.String("sessions-dir"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	addr := net.JoinHostPort(cmd.String("host"), strconv.Itoa(int(cmd.Int("port"))))
	hub := websocket.NewHub()
	handler := newHandler(svc.tour, hub, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logrus.WithFields(logrus.Fields{
		"app":     AppName,
		"version": Version,
	}).Info("starting server")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		sessionCleanupRoutine(ctx, svc.sessions, sessionCleanupEvery)
		return nil
	})
	g.Go(func() error {
		filesystemSyncRoutine(ctx, svc.sessions, svc.persistence, sessionSyncEvery)
		return nil
	})

	g.Go(func() error {
		logrus.WithFields(logrus.Fields{
			"api":       fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if cmd.Bool("ngrok") {
		g.Go(func() error {
			serveNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("HTTP server shutdown error")
		}
		if err := svc.sessions.SaveAllSessions(); err != nil {
			logrus.WithError(err).Warn("failed to save sessions on shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logrus.Info("server stopped")
	return nil
}

// serveNgrok exposes handler through an ngrok tunnel until ctx is done. A
// tunnel that cannot start is logged and leaves the local server running.
func serveNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		logrus.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logrus.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logrus.WithFields(logrus.Fields{
		"url":       ngrokURL,
		"api":       ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Info("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logrus.WithError(err).Error("ngrok server error")
	}
	logrus.Info("ngrok tunnel closed")
}

// sessionCleanupRoutine removes sessions that have not been accessed within
// sessionMaxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logrus.WithField("removed", removed).Info("cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory whose files were deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncSessions(manager, persistence)
		}
	}
}

// syncSessions returns how many in-memory sessions were pruned
func syncSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	if persistence == nil {
		return 0
	}

	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logrus.WithField("session", sess.ID).Debug("pruned session from memory (file deleted)")
		}
	}

	if pruned > 0 {
		logrus.WithField("pruned", pruned).Info("filesystem sync pruned orphaned sessions")
	}
	return pruned
}

// runStdioMCP serves MCP over stdio. An API already listening on --port is
// reused; otherwise an internal API is started on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	externalURL := fmt.Sprintf("http://localhost:%d", cmd.Int("port"))
	baseURL := externalURL

	if apiHealthy(&http.Client{Timeout: 2 * time.Second}, externalURL) {
		logrus.WithField("url", externalURL).Info("external API server found, using it for MCP")
	} else {
		logrus.Info("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(cmd.String("config-dir"), cmd.String("sessions-dir"))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		internalURL, shutdown, err := startInternalAPI(ctx, svc.tour)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer shutdown()

		if err := waitForAPI(ctx, internalURL, 8); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	logrus.WithField("api", baseURL).Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return cli.Exit(fmt.Sprintf("MCP stdio server error: %v", err), 1)
	}
	return nil
}

// startInternalAPI serves the REST API on a random loopback port and returns
// its base URL together with a shutdown function.
func startInternalAPI(ctx context.Context, tourService service.TourService) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	ctx, cancel := context.WithCancel(ctx)
	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: newHandler(tourService, hub, baseURL)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("internal HTTP server error")
		}
	}()

	logrus.WithField("url", baseURL).Debug("internal HTTP server started")

	shutdown := func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		httpServer.Shutdown(shutdownCtx)
	}
	return baseURL, shutdown, nil
}

// apiHealthy reports whether an API server answers /health at baseURL
func apiHealthy(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// waitForAPI polls /health with exponential backoff
func waitForAPI(ctx context.Context, baseURL string, maxAttempts int) error {
	b := &backoff.Backoff{
		Min:    10 * time.Millisecond,
		Max:    500 * time.Millisecond,
		Factor: 2,
	}
	client := &http.Client{Timeout: time.Second}

	for {
		if apiHealthy(client, baseURL) {
			return nil
		}
		if int(b.Attempt()) >= maxAttempts {
			return fmt.Errorf("API at %s not ready after %d attempts", baseURL, maxAttempts)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}
