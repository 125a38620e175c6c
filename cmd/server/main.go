// Command server runs the demo application: a notes resource with an
// admin-only purge action and optional static content, served through the
// app adapter.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/restforge/restforge/internal/app"
	"github.com/restforge/restforge/internal/config"
	"github.com/restforge/restforge/internal/platform/logger"
	"github.com/restforge/restforge/internal/security"
	"github.com/restforge/restforge/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Server)

	users, err := loadCredentials(cfg.Auth.CredentialsFile)
	if err != nil {
		return err
	}
	scheme := security.NewBasicScheme(cfg.Auth.Realm, security.BcryptAuthenticator(users))
	admin := &security.RoleRequirement{Role: "admin", AuthScheme: scheme}

	a := app.New("Notes", "1.0", app.WithLogger(log))

	notes, err := newNotesResource(store.NewNoteStore(), admin)
	if err != nil {
		return err
	}
	if err := a.RegisterResource("/notes", notes); err != nil {
		return err
	}

	if cfg.Static.Path != "" && cfg.Static.Dir != "" {
		if err := a.RegisterStatic(cfg.Static.Path, cfg.Static.Dir, nil); err != nil {
			return err
		}
	}

	a.Router().Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})

	return serve(log, cfg.Server.Port, a)
}

// serve runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully.
func serve(log *slog.Logger, port int, handler http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-shutdownCh:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server shutdown completed")
	return nil
}

// loadCredentials reads the user table from a JSON file mapping user ids
// to bcrypt password hashes and roles. A missing path yields an empty
// table, which leaves protected operations unreachable.
func loadCredentials(path string) (map[string]security.Credential, error) {
	if path == "" {
		return map[string]security.Credential{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var raw map[string]struct {
		PasswordHash string `json:"password_hash"`
		Role         string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid credentials file: %w", err)
	}
	users := make(map[string]security.Credential, len(raw))
	for id, rec := range raw {
		users[id] = security.Credential{PasswordHash: rec.PasswordHash, Role: rec.Role}
	}
	return users, nil
}
