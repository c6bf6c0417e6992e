package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <file-id>...",
	Short: "Upload files to the configured S3 bucket",
	Long: `Upload the local content of files to the configured S3 bucket so the
signed URL strategy can serve them. Objects are stored under
S3_KEY_PREFIX followed by the file's parent and filename.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := setup(ctx, afero.NewOsFs())
	if err != nil {
		return err
	}
	defer env.close()

	store, err := env.cfg.S3Store(ctx, env.log)
	if err != nil {
		return err
	}

	for _, arg := range args {
		f, err := file(cmd, env, arg)
		if err != nil {
			return err
		}
		if !f.Exists() {
			return fmt.Errorf("file %s has no local content at %s", arg, f.Root())
		}

		key := env.cfg.S3.KeyPrefix + f.Record().Key()
		if err := store.PublishFile(ctx, env.app.Fs(), f.Root(), key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> s3://%s/%s\n", f.Record().Filename, env.cfg.S3.Bucket, key)
	}
	return nil
}
