package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered plugins and their extensions",
	RunE:  runPlugins,
}

var fieldsetsCmd = &cobra.Command{
	Use:   "fieldsets",
	Short: "Show the block fieldset groups offered to editors",
	RunE:  runFieldsets,
}

func runPlugins(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd.Context(), afero.NewOsFs())
	if err != nil {
		return err
	}
	defer env.close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBLUEPRINTS\tSNIPPETS\tPANEL")
	for _, p := range env.app.Plugins().Plugins() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%t\n", p.Name, len(p.Blueprints), len(p.Snippets), p.PanelScript != "")
	}
	return w.Flush()
}

func runFieldsets(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd.Context(), afero.NewOsFs())
	if err != nil {
		return err
	}
	defer env.close()

	groups, err := env.app.Fieldsets()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, g := range groups {
		fmt.Fprintf(out, "%s (%s)\n", g.Label, g.Name)
		names := make([]string, 0, len(g.Fieldsets))
		for _, fs := range g.Fieldsets {
			names = append(names, fs.Type)
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(names, ", "))
	}
	return nil
}
