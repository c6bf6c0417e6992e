package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
)

var filesCmd = &cobra.Command{
	Use:   "files <parent>",
	Short: "List the files attached to a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiles,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file-id>",
	Short: "Show a file and its asset attributes",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var callCmd = &cobra.Command{
	Use:   "call <file-id> <operation> [args...]",
	Short: "Run an operation on a file",
	Long: `Run an operation on a file through its proxy fallback.

Arguments are passed as strings. An argument starting with '{' is decoded as
a JSON object, e.g.

  simplecms call <id> html '{"alt":"Cover"}'`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCall,
}

var assetCmd = &cobra.Command{
	Use:   "asset <path> [operation] [args...]",
	Short: "Show an asset or run an operation on it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsset,
}

func runFiles(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd.Context(), afero.NewOsFs())
	if err != nil {
		return err
	}
	defer env.close()

	files, err := env.app.Files(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No files attached to %s\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tTYPE\tSIZE\tSORT")
	for _, f := range files {
		rec := f.Record()
		size, _ := f.Call("niceSize")
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\n", rec.ID, rec.Filename, f.Type(), size, rec.Sort)
	}
	return w.Flush()
}

func runInspect(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd.Context(), afero.NewOsFs())
	if err != nil {
		return err
	}
	defer env.close()

	f, err := file(cmd, env, args[0])
	if err != nil {
		return err
	}
	arr, err := f.Call("toArray")
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"record": f.Record(),
		"asset":  arr,
	})
}

func runCall(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd.Context(), afero.NewOsFs())
	if err != nil {
		return err
	}
	defer env.close()

	f, err := file(cmd, env, args[0])
	if err != nil {
		return err
	}
	callArgs, err := parseArgs(args[2:])
	if err != nil {
		return err
	}
	result, err := f.Call(args[1], callArgs...)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), api.Encodable(result))
}

func runAsset(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd.Context(), afero.NewOsFs())
	if err != nil {
		return err
	}
	defer env.close()

	a := env.app.Asset(args[0])
	operation := "toArray"
	if len(args) > 1 {
		operation = args[1]
	}
	var callArgs []any
	if len(args) > 2 {
		if callArgs, err = parseArgs(args[2:]); err != nil {
			return err
		}
	}

	result, err := a.Call(operation, callArgs...)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), api.Encodable(result))
}

func file(cmd *cobra.Command, env *environment, arg string) (*simplecms.File, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid file id %q: %w", arg, err)
	}
	return env.app.File(cmd.Context(), id)
}

func parseArgs(args []string) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, a := range args {
		if !strings.HasPrefix(strings.TrimSpace(a), "{") {
			out = append(out, a)
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(a), &m); err != nil {
			return nil, fmt.Errorf("invalid JSON argument %q: %w", a, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
