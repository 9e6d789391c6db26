package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/vango-dev/outlet/pkg/pattern"
)

func scoreCmd() *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "score <template>...",
		Short: "Score templates and show their match precedence",
		Long: `Score one or more path templates and print them in match-precedence
order, highest first. Ties are broken by specificity (static-to-total
segment ratio), then by the order given on the command line - the same
rules the route table applies.

Examples:
  outlet score '/users/:id' '/users/*' '/users/profile'
  outlet score --explain '/docs/:section?/:page?'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(args, explain)
		},
	}

	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Show the per-kind segment breakdown behind each score")

	return cmd
}

type scoredTemplate struct {
	compiled *pattern.Compiled
	position int
}

func runScore(templates []string, explain bool) error {
	scored := make([]scoredTemplate, 0, len(templates))
	for i, tpl := range templates {
		c, err := pattern.Compile(tpl)
		if err != nil {
			return fmt.Errorf("compile %q: %w", tpl, err)
		}
		scored = append(scored, scoredTemplate{compiled: c, position: i})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i].compiled, scored[j].compiled
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Specificity != b.Specificity {
			return a.Specificity > b.Specificity
		}
		return scored[i].position < scored[j].position
	})

	for rank, s := range scored {
		c := s.compiled
		fmt.Printf("%2d. %-40s %10.2f\n", rank+1, displayTemplate(c.Template), c.Score)
		if explain {
			b := c.Breakdown
			info("static=%d dynamic=%d optional=%d wildcard=%d depth=%d specificity=%.3f",
				b.Static, b.Dynamic, b.Optional, b.Wildcard, b.Depth, c.Specificity)
		}
	}
	return nil
}

// displayTemplate renders the empty template visibly.
func displayTemplate(tpl string) string {
	if tpl == "" {
		return "/"
	}
	return tpl
}
