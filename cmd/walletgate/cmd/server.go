package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/verdantlabs/walletgate/autounlock"
	"github.com/verdantlabs/walletgate/custody"
	"github.com/verdantlabs/walletgate/gateway"
	"github.com/verdantlabs/walletgate/internal/util"
)

const deviceSecretBytes = 32

var (
	port       int
	dataDir    string
	custodyURL string
	apiKey     string
	tlsCert    string
	tlsKey     string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the wallet session gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		if custodyURL == "" {
			return errors.New("--custody-url is required")
		}
		key := apiKey
		if key == "" {
			key = os.Getenv("WALLETGATE_API_KEY")
		}
		if key == "" {
			return errors.New("custody API key required (--api-key or WALLETGATE_API_KEY)")
		}

		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		deviceSecret, err := loadOrCreateDeviceSecret(filepath.Join(dataDir, "device.secret"))
		if err != nil {
			return fmt.Errorf("failed to load device secret: %w", err)
		}
		defer util.WipeBytes(deviceSecret)

		store, err := autounlock.NewBoltStoreFromFile(filepath.Join(dataDir, "autounlock.db"), deviceSecret)
		if err != nil {
			return fmt.Errorf("failed to open auto-unlock store: %w", err)
		}
		defer store.Close()

		client := custody.New(custodyURL, key, custody.WithLogger(logger))
		mgr := autounlock.NewManager(store, client, autounlock.WithLogger(logger))
		defer mgr.Close()

		a := gateway.New(client, mgr, gateway.WithLogger(logger))

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

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			var err error
			if tlsCert != "" && tlsKey != "" {
				err = server.ListenAndServeTLS(tlsCert, tlsKey)
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting gateway on port %d (custody: %s, data: %s)...\n", port, custodyURL, dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// loadOrCreateDeviceSecret reads the device secret that seals the
// auto-unlock store, generating one on first run. The file is the trust
// anchor for records at rest; losing it only forces users to re-enable
// auto-unlock.
func loadOrCreateDeviceSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) < 16 {
			return nil, fmt.Errorf("device secret at %s is too short", path)
		}
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	secret, err = util.RandomBytes(deviceSecretBytes)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, err
	}
	return secret, nil
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 9090, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
	serverCmd.Flags().StringVar(&custodyURL, "custody-url", "", "Base URL of the custody backend")
	serverCmd.Flags().StringVar(&apiKey, "api-key", "", "Custody API key (or WALLETGATE_API_KEY)")
	serverCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
}
