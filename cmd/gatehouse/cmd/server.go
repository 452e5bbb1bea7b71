package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/tfields/gatehouse/api"
	"github.com/tfields/gatehouse/auth"
	"github.com/tfields/gatehouse/session"
	"github.com/tfields/gatehouse/store/sqlite"
)

var (
	port              int
	dataDir           string
	inactivityTimeout time.Duration
	sweepInterval     time.Duration
	tlsCert           string
	tlsKey            string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the session service server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		users, err := sqlite.Open(dataDir + "/users.db")
		if err != nil {
			return fmt.Errorf("failed to open user store: %w", err)
		}
		defer users.Close()

		sessions, err := session.OpenBoltStore(dataDir+"/sessions.db", inactivityTimeout)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer sessions.Close()

		hasher, err := auth.NewHasher(auth.DefaultArgon2idParams())
		if err != nil {
			return fmt.Errorf("failed to initialize password hasher: %w", err)
		}
		backend := auth.NewBackend(users, hasher)
		manager := session.NewManager(sessions, session.NewSigner(), backend, inactivityTimeout)

		reaper := session.NewReaper(sessions, sweepInterval, logger)
		reaper.Start()

		a := api.New(backend, manager, api.WithLogger(logger))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		useTLS := tlsCert != "" && tlsKey != ""
		if useTLS {
			cert, err := tls.LoadX509KeyPair(tlsCert, tlsKey)
			if err != nil {
				return fmt.Errorf("failed to load TLS key pair: %w", err)
			}
			server.TLSConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
		}

		// Graceful shutdown on SIGINT/SIGTERM: drain in-flight requests,
		// then stop the reaper, joining any sweep still in progress.
		done := make(chan error, 1)
		go func() {
			var err error
			if useTLS {
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		fmt.Printf("Starting server on port %d (data: %s)...\n", port, dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				reaper.Stop()
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			reaper.Stop()
			return nil
		case err := <-done:
			reaper.Stop()
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8443, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
	serverCmd.Flags().DurationVar(&inactivityTimeout, "inactivity-timeout", 24*time.Hour, "Idle time after which a session expires")
	serverCmd.Flags().DurationVar(&sweepInterval, "sweep-interval", time.Minute, "How often expired sessions are swept")
	serverCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
}
