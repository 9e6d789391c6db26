package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/outlet/pkg/pattern"
)

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <template> <path>",
		Short: "Try a path against a template",
		Long: `Match a pathname against a template and print the captured params.

Examples:
  outlet match '/users/:id' /users/42
  outlet match '/files/**' /files/a/b/c.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(args[0], args[1])
		},
	}
	return cmd
}

func runMatch(template, path string) error {
	c, err := pattern.Compile(template)
	if err != nil {
		return fmt.Errorf("compile %q: %w", template, err)
	}

	params, ok := pattern.Match(path, c)
	if !ok {
		warn("%s does not match %s", path, displayTemplate(template))
		return nil
	}

	success("%s matches %s", path, displayTemplate(template))
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		info("%s = %q", k, params[k])
	}
	if tail, has := pattern.Tail(params); has {
		info("tail capture: %q", tail)
	}
	return nil
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <template> [name=value]...",
		Short: "Build a concrete path from a template",
		Long: `Substitute params into a template and print the concrete path.
Wildcard templates cannot be built.

Examples:
  outlet build '/users/:id' id=42
  outlet build '/docs/:section?/:page?' section=guide`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := pattern.Params{}
			for _, arg := range args[1:] {
				name, value, found := strings.Cut(arg, "=")
				if !found {
					return fmt.Errorf("param %q is not name=value", arg)
				}
				params[name] = value
			}
			return runBuild(args[0], params)
		},
	}
	return cmd
}

func runBuild(template string, params pattern.Params) error {
	path, err := pattern.Build(template, params)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
