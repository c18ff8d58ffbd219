package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/portfolio"
	"github.com/eringen/portfolio/importer"
	"github.com/eringen/portfolio/logger"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file|dir>...",
	Short: "Import items from YAML or Markdown files",
	Long: `import reads YAML seed files (a list under "items") and Markdown files with
frontmatter, then saves each document into its collection. Documents without
a collection field take it from their directory name. A failing document is
reported and the rest are still imported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []importer.Entry
		for _, p := range args {
			es, err := importer.Load(p)
			if err != nil {
				return err
			}
			entries = append(entries, es...)
		}
		if importDryRun {
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e.Collection, e.Item.Title, e.Source)
			}
			return nil
		}

		ctx := cmd.Context()
		store, err := portfolio.NewStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer store.Close()
		lib := portfolio.NewLibrary(store, nil, log)

		var errs []error
		saved := 0
		for _, e := range entries {
			if _, err := lib.Save(ctx, e.Collection, e.Item, e.Publish); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", e.Source, err))
				continue
			}
			saved++
		}
		log.Info("import finished", logger.Int("saved", saved), logger.Int("failed", len(errs)))
		return errors.Join(errs...)
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and list documents without saving")
}
