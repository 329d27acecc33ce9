package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/brickworks/services/production/api"
	"example.com/brickworks/services/production/internal/search"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	searchClient, err := search.NewElasticClient(a.cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Event search unavailable")
		searchClient = nil
	}

	server := api.NewServer(a.cfg.Server, a.core, searchClient, a.tracer)
	httpSrv := &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      server.Router(),
		ReadTimeout:  a.cfg.Server.Timeout,
		WriteTimeout: a.cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", httpSrv.Addr).Msg("HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("HTTP server shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
