package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/evanfield/guidepost"
	"github.com/evanfield/guidepost/internal/logging"
	httpAdapter "github.com/evanfield/guidepost/pkg/adapters/http"
	"github.com/evanfield/guidepost/pkg/adapters/memory"
	redisAdapter "github.com/evanfield/guidepost/pkg/adapters/redis"
	"github.com/evanfield/guidepost/pkg/observability"
	"github.com/evanfield/guidepost/pkg/ports"
	"github.com/evanfield/guidepost/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the Guidepost engine in server mode, exposing the session API as JSON over HTTP with an SSE narration stream.`,
	Run: func(cmd *cobra.Command, args []string) {
		scriptDir, _ := cmd.Flags().GetString("script")
		debug, _ := cmd.Flags().GetBool("debug")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")
		sessionTTL, _ := cmd.Flags().GetDuration("session-ttl")

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		engine, err := guidepost.New(scriptDir,
			guidepost.WithLogger(logger),
			guidepost.WithLifecycleHooks(metrics.Hooks()),
		)
		if err != nil {
			fmt.Printf("Error initializing guidepost: %v\n", err)
			os.Exit(1)
		}
		defer engine.Close()

		var store ports.StateStore
		if redisAddr != "" {
			redisStore := redisAdapter.New(redisAddr, redisPassword, redisDB,
				redisAdapter.WithTTL(sessionTTL))
			defer redisStore.Close()
			store = redisStore
			logger.Info("Using redis session store", "addr", redisAddr)
		} else {
			store = memory.NewStore()
			logger.Info("Using in-memory session store")
		}

		sessions := session.NewManager(store, session.WithLogger(logger))
		handler := httpAdapter.NewHandler(engine, sessions, httpAdapter.WithLogger(logger))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		mux.Handle("/", handler)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Guidepost Server on %s\n", srv.Addr)
			if scriptDir == "" {
				fmt.Println("Serving the embedded default script")
			} else {
				fmt.Printf("Serving script from: %s\n", scriptDir)
			}
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Guidepost Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for session storage (empty uses in-memory)")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database index")
	serveCmd.Flags().Duration("session-ttl", 24*time.Hour, "Expiry for persisted sessions (redis only)")
}
