package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/pkg/manifest"
)

func lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <manifest.json>",
		Short: "Detect shadowed routes in a manifest",
		Long: `Check every route table in a manifest for routes that can never win a
match because a higher-precedence route in the same table always wins.

The command exits non-zero when findings exist, so it can gate CI.

Examples:
  outlet lint manifest.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(args[0])
		},
	}
	return cmd
}

func runLint(path string) error {
	m, err := readManifest(path)
	if err != nil {
		return err
	}

	findings, err := manifest.Lint(m)
	if err != nil {
		return errors.FromError(err, "N101")
	}

	if len(findings) == 0 {
		success("no shadowed routes")
		return nil
	}

	for _, f := range findings {
		warn("%s", f)
	}
	return errors.New("N102").
		WithDetail("Found " + itoa(len(findings)) + " shadowed route(s). Reorder, rescope, or remove them.")
}

// readManifest loads and decodes a manifest file with coded errors.
func readManifest(path string) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("N100").Wrap(err).
			WithSuggestion("Generate one with 'outlet export' or the inspector's /api/manifest endpoint")
	}
	defer f.Close()

	m, err := manifest.Decode(f)
	if err != nil {
		return nil, errors.New("N101").Wrap(err)
	}
	return m, nil
}

// itoa avoids pulling strconv into messages built from counts.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
