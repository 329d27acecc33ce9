package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/brickworks/services/production/internal/messaging"
	"example.com/brickworks/services/production/internal/search"
	"example.com/brickworks/services/production/projections"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background event processor and reconciler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorker()
	},
}

func runWorker() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	var sinks []projections.EventSink
	if a.cfg.Worker.SearchIndexingEnabled {
		searchClient, err := search.NewElasticClient(a.cfg.Elastic)
		if err != nil {
			return errors.Wrap(err, "failed to initialize search indexing")
		}
		sinks = append(sinks, projections.NewSearchSink(searchClient))
	}
	if a.cfg.Worker.PublishEnabled {
		publisher, err := messaging.NewPublisher(a.cfg.Azure)
		if err != nil {
			return errors.Wrap(err, "failed to initialize event publishing")
		}
		defer func() {
			_ = publisher.Close(context.Background())
		}()
		sinks = append(sinks, projections.NewBusSink(publisher))
	}

	processor := projections.NewEventProcessor(a.db, a.cfg.Worker.ProjectionBatchSize, sinks...)
	reconciler := projections.NewReconciler(a.readDB)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "failed to create scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(sinks) > 0 {
		_, err = scheduler.NewJob(
			gocron.DurationJob(a.cfg.Worker.ProjectionInterval),
			gocron.NewTask(func() {
				if _, err := processor.ProcessPending(ctx); err != nil {
					log.Error().Err(err).Msg("Event processing pass failed")
				}
			}),
		)
		if err != nil {
			return errors.Wrap(err, "failed to schedule event processor")
		}
	} else {
		log.Info().Msg("No event sinks enabled; processor idle")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(a.cfg.Worker.ReconcileInterval),
		gocron.NewTask(func() {
			if _, err := reconciler.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Reconciliation pass failed")
			}
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to schedule reconciler")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start()
		log.Info().Msg("Worker started")
		<-gctx.Done()
		log.Info().Msg("Worker shutting down")
		return scheduler.Shutdown()
	})
	return g.Wait()
}
