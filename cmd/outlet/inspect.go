package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	outlet "github.com/vango-dev/outlet"
	"github.com/vango-dev/outlet/internal/config"
	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/internal/inspect"
	"github.com/vango-dev/outlet/pkg/manifest"
	"github.com/vango-dev/outlet/pkg/nav"
)

func inspectCmd() *cobra.Command {
	var (
		manifestPath string
		addr         string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the inspector for a manifest",
		Long: `Rebuild a navigation tree from a manifest and serve the inspector on
it: the tree and manifest as JSON, shadow-analysis findings, a navigate
endpoint, live commit events over WebSocket, and Prometheus metrics.

The rebuilt routes render nothing; the inspector is for exploring
matching and precedence, not application views.

Examples:
  outlet inspect --manifest manifest.json
  outlet inspect --manifest manifest.json --addr localhost:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(manifestPath, addr)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Manifest file to serve (default: manifest output from outlet.json)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: inspector addr from outlet.json)")

	return cmd
}

func runInspect(manifestPath, addr string) error {
	cfg := loadConfigIfPresent()
	if manifestPath == "" {
		if cfg == nil {
			return errors.New("N100").
				WithSuggestion("Pass --manifest or run inside a project with outlet.json")
		}
		manifestPath = cfg.ManifestPath()
	}
	if addr == "" {
		if cfg != nil {
			addr = cfg.Inspector.Addr
		} else {
			addr = config.DefaultInspectorAddr
		}
	}

	m, err := readManifest(manifestPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	root := outlet.New(outlet.Config{Logger: logger})
	if err := rebuildNode(root.Node(), &m.Root); err != nil {
		return errors.FromError(err, "N101")
	}

	srv := inspect.NewServer(root, inspect.WithLogger(logger))

	printBanner()
	info("serving %s", manifestPath)
	info("inspector at http://%s", addr)
	info("press Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(addr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// rebuildNode registers a manifest node's routes on target and announces a
// child node per manifest child.
func rebuildNode(target *nav.Node, info *manifest.NodeInfo) error {
	for _, r := range info.Routes {
		d := &nav.Descriptor{Path: r.Template, Name: r.Name, Render: nopRender}
		if err := target.Routes().Add(d); err != nil {
			return err
		}
	}
	if info.Fallback != nil {
		d := &nav.Descriptor{Path: info.Fallback.Template, Name: info.Fallback.Name, Render: nopRender}
		if err := target.Routes().SetFallback(d); err != nil {
			return err
		}
	}

	for i := range info.Children {
		ci := &info.Children[i]
		child := nav.NewNode(nav.WithID(ci.ID))
		if err := rebuildNode(child, ci); err != nil {
			return err
		}
		ctx := nav.WithNode(context.Background(), target)
		if _, err := nav.Announce(ctx, child); err != nil {
			return err
		}
	}
	return nil
}
