package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/outlet/internal/config"
	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/pkg/manifest"
	"github.com/vango-dev/outlet/pkg/nav"
)

func exportCmd() *cobra.Command {
	var (
		output   string
		fallback string
		pretty   bool
		publish  bool
	)

	cmd := &cobra.Command{
		Use:   "export <template>...",
		Short: "Export a manifest for a set of route templates",
		Long: `Build a route table from the given templates and export it as a
manifest, in the exact precedence order the matcher would use.

With --publish the manifest is also uploaded to the S3 bucket configured
in outlet.json.

Examples:
  outlet export '/users/:id' '/users' '/about' -o manifest.json
  outlet export '/shop/*' --fallback '**' --publish`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args, output, fallback, pretty, publish)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: manifest output from outlet.json, else manifest.json)")
	cmd.Flags().StringVar(&fallback, "fallback", "", "Fallback template for unmatched paths")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "Indent the JSON output")
	cmd.Flags().BoolVar(&publish, "publish", false, "Also upload the manifest to the configured S3 bucket")

	return cmd
}

// nopRender satisfies descriptor validation for table-only tooling.
func nopRender(params map[string]any) nav.View { return nil }

func runExport(templates []string, output, fallback string, pretty, publish bool) error {
	node := nav.NewNode(nav.WithID("export"))
	for _, tpl := range templates {
		if err := node.Routes().Add(&nav.Descriptor{Path: tpl, Render: nopRender}); err != nil {
			return errors.FromError(err, "N020")
		}
	}
	if fallback != "" {
		if err := node.Routes().SetFallback(&nav.Descriptor{Path: fallback, Render: nopRender}); err != nil {
			return errors.FromError(err, "N021")
		}
	}

	m, err := manifest.Snapshot(node)
	if err != nil {
		return errors.FromError(err, "N101")
	}

	cfg := loadConfigIfPresent()
	if output == "" {
		if cfg != nil {
			output = cfg.ManifestPath()
		} else {
			output = config.DefaultManifestOutput
		}
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := m.Encode(f, pretty); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	success("wrote %s (%d routes)", output, len(m.Root.Routes))

	if !publish {
		return nil
	}
	if cfg == nil || !cfg.PublishEnabled() {
		return errors.New("N083").
			WithSuggestion("Add a publish section with bucket and region to outlet.json")
	}
	client := s3.New(s3.Options{Region: cfg.Publish.Region})
	pub := manifest.NewPublisher(client, cfg.Publish.Bucket, cfg.Publish.Prefix)

	key, err := pub.Publish(context.Background(), m)
	if err != nil {
		return errors.New("N103").Wrap(err)
	}
	success("published s3://%s/%s", cfg.Publish.Bucket, key)

	if cfg.Publish.Latest {
		key, err = pub.PublishLatest(context.Background(), m)
		if err != nil {
			return errors.New("N103").Wrap(err)
		}
		success("published s3://%s/%s", cfg.Publish.Bucket, key)
	}
	return nil
}

// loadConfigIfPresent loads outlet.json from the working tree, or returns
// nil when the command runs outside a project.
func loadConfigIfPresent() *config.Config {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return nil
	}
	return cfg
}
