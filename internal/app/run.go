package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/assemblygo/internal/assembly"
	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/ctxlog"
	"github.com/specialistvlad/assemblygo/internal/system"
)

// Run assembles a fresh system from every loaded blueprint, in
// declaration order, and prints the resulting component table.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if len(a.model.Blueprints) == 0 {
		a.logger.Warn("No blueprints found in manifests, nothing to assemble.")
		return nil
	}

	roots := make([]component.Blueprint, len(a.model.Blueprints))
	for i, bp := range a.model.Blueprints {
		roots[i] = bp
	}

	a.logger.Info("Assembling model.", "blueprints", len(roots))
	sys, err := assembly.Add(ctx, system.New(), assembly.Options{}, roots...)
	if err != nil {
		return fmt.Errorf("assembly failed: %w", err)
	}
	a.logger.Info("Model assembled.", "components", len(sys.Components()))

	fmt.Fprintln(a.outW, "Components:")
	for _, st := range sys.Snapshot() {
		if st.HasData {
			fmt.Fprintf(a.outW, "  %-24s %s\n", st.Name, st.Payload.GoString())
		} else {
			fmt.Fprintf(a.outW, "  %s\n", st.Name)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
