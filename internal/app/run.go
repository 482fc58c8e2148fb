package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/panelforge/panelforge/internal/builder"
	"github.com/panelforge/panelforge/internal/ctxlog"
	"github.com/panelforge/panelforge/internal/filewatch"
)

// Run executes the main application logic: describe the loaded resources
// and, when configured, keep reloading them as their definition files
// change until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	a.describeResources()

	if !a.config.Watch {
		a.logger.Debug("App.Run method finished.")
		return nil
	}

	a.logger.Info("Watching resource definitions for changes.", "path", a.config.ResourcesPath)
	for {
		wctx, cancel, err := filewatch.UntilChangeContext(ctx, a.config.ResourcesPath)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", a.config.ResourcesPath, err)
		}

		<-wctx.Done()
		cancel()
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		a.logger.Info("Resource definitions changed, reloading.")
		if err := a.loadResources(ctx); err != nil {
			// Keep serving the previous definitions; the operator may still
			// be mid-edit.
			a.logger.Error("Reload failed, keeping previous definitions.", "error", err)
			continue
		}
		a.describeResources()
	}
}

// describeResources prints a human-readable description of every loaded
// resource to the application's output writer.
func (a *App) describeResources() {
	fmt.Fprintf(a.outW, "Loaded %d resource(s) from %s\n", len(a.resources), a.config.ResourcesPath)
	for _, res := range a.resources {
		a.describeResource(res)
	}
}

func (a *App) describeResource(res *builder.Resource) {
	fmt.Fprintf(a.outW, "\nresource %q\n", res.Name)

	for _, f := range res.Fields {
		fmt.Fprintf(a.outW, "  field %-20s kind=%s", f.Key, f.Kind.Name)
		if f.Rules != "" {
			fmt.Fprintf(a.outW, " rules=%q", f.Rules)
		}
		fmt.Fprintln(a.outW)
	}

	for _, group := range res.Groups {
		fmt.Fprintf(a.outW, "  fieldset %-17s min=%d max=%d sortable=%t\n",
			group.Key(), group.MinItems(), group.MaxItems(), group.Sortable())
		for _, tf := range group.TemplateFields() {
			fmt.Fprintf(a.outW, "    template %-18s", tf.Name)
			if tf.Collection != "" {
				fmt.Fprintf(a.outW, " collection=%s", tf.Collection)
			}
			fmt.Fprintln(a.outW)
		}
		for _, path := range sortedPaths(group.Rules()) {
			fmt.Fprintf(a.outW, "    rule %-22s %q\n", path, group.Rules()[path])
		}
	}
}

func sortedPaths(rules map[string]string) []string {
	paths := make([]string, 0, len(rules))
	for path := range rules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
