package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"docintake/internal/api"
	"docintake/internal/api/handler"
	"docintake/internal/config"
	"docintake/internal/gcp"
	"docintake/internal/services"
	"docintake/internal/store"
	"docintake/internal/trigger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("Fatal error.", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return err
	}
	defer firestoreClient.Close()

	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return err
	}
	defer storageClient.Close()

	executionsClient, err := gcp.NewExecutionsClient(ctx)
	if err != nil {
		return err
	}
	defer executionsClient.Close()

	blobs := store.NewBlobGateway(storageClient, cfg.RawBucket)
	records := store.NewJobRecordStore(firestoreClient, cfg.JobsCollection)
	results := store.NewResultStore(firestoreClient, cfg.ResultsCollection)
	workflowTrigger := trigger.NewWorkflowTrigger(executionsClient, firestoreClient, trigger.WorkflowTriggerConfig{
		ProjectID:          cfg.ProjectID,
		WorkflowLocation:   cfg.WorkflowLocation,
		WorkflowID:         cfg.WorkflowID,
		RegistryCollection: cfg.ExecutionsCollection,
	})

	submissions := services.NewSubmissionService(blobs, records, workflowTrigger, services.SubmissionConfig{
		Bucket:       cfg.RawBucket,
		OriginPrefix: cfg.OriginPrefix,
	})
	queries := services.NewQueryService(records, results)

	documents := handler.NewDocumentHandler(submissions, queries, cfg.MaxUploadBytes, cfg.ListLimit)
	router := api.NewRouter(documents, cfg.RawBucket)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting.", "port", cfg.Port, "bucket", cfg.RawBucket, "workflow", cfg.WorkflowID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server stopped gracefully.")
	return nil
}
