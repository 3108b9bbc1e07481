/*
Copyright © 2024 Dean
*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpHdlr "ragchat/handler/http"
	"ragchat/src/core/history"
	"ragchat/src/core/knowledgebase"
	"ragchat/src/log"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server",
	Long: `The serve command starts an HTTP server answering questions about the
document directory. The server accepts connections immediately; chat requests
return 503 until the document index has been built.`,
	RunE: RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) error {
	gin.SetMode(gin.ReleaseMode)

	kb := knowledgebase.NewKnowledgeBase(history.NewStore(viper.GetInt("history.max_entries")))

	// Initialize HTTP handler with individual services
	handler := httpHdlr.NewHandler(
		knowledgebase.NewChatService(kb),
		knowledgebase.NewSystemService(kb),
	)

	r, err := httpHdlr.NewRouter(handler, stringList("server.cors_origins"))
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Build the index in the background; requests are rejected until ready
	initCtx, cancelInit := context.WithCancel(context.Background())
	defer cancelInit()
	if err := kb.Start(initCtx, initializer()); err != nil {
		return fmt.Errorf("failed to start initialization: %w", err)
	}

	// Start server in a goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server is running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	log.Info("Shutting down server...")
	cancelInit()

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}
