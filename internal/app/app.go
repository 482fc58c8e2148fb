package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/panelforge/panelforge/internal/builder"
	"github.com/panelforge/panelforge/internal/ctxlog"
	"github.com/panelforge/panelforge/internal/model"
	"github.com/panelforge/panelforge/internal/registry"
	"github.com/panelforge/panelforge/internal/store"
	"github.com/panelforge/panelforge/internal/store/memory"
	"github.com/panelforge/panelforge/internal/store/postgres"
	"github.com/panelforge/panelforge/internal/validate"
	"github.com/panelforge/panelforge/internal/workflow"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry

	records   store.RecordStore
	flow      *workflow.Workflow
	resources []*builder.Resource
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry,
// with all resource definitions loaded and validated.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	records, err := newRecordStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure record store: %w", err)
	}
	logger.Debug("Record store configured.", "postgres", cfg.DatabaseDSN != "")

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: registry.NewWithCoreKinds(),
		records:  records,
		flow:     workflow.New(records, validate.NewSchemaEngine()),
	}

	if err := a.loadResources(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Resource definitions validated against the registry.")

	return a, nil
}

// newRecordStore selects the concrete store from configuration.
func newRecordStore(cfg *Config) (store.RecordStore, error) {
	if cfg.DatabaseDSN != "" {
		return postgres.New(cfg.DatabaseDSN)
	}
	return memory.New(), nil
}

// loadResources parses the definition files and builds the runtime
// resources. It is re-run by the watch loop when definitions change.
func (a *App) loadResources(ctx context.Context) error {
	definitions, err := model.LoadResourcesRecursively(ctx, a.config.ResourcesPath)
	if err != nil {
		return fmt.Errorf("failed to load resource definitions: %w", err)
	}

	resources, err := builder.Build(ctx, definitions, a.registry, a.records.Media())
	if err != nil {
		return fmt.Errorf("failed to build runtime resources: %w", err)
	}

	a.resources = resources
	return nil
}

// Registry returns the application's field-kind registry. This is primarily
// for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Resources returns the loaded runtime resources.
func (a *App) Resources() []*builder.Resource {
	return a.resources
}

// Resource returns the runtime resource with the given name, if any.
func (a *App) Resource(name string) (*builder.Resource, bool) {
	for _, res := range a.resources {
		if res.Name == name {
			return res, true
		}
	}
	return nil, false
}

// Workflow returns the save workflow bound to the configured store.
func (a *App) Workflow() *workflow.Workflow {
	return a.flow
}

// Records returns the configured record store.
func (a *App) Records() store.RecordStore {
	return a.records
}
