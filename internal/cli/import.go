package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/result"
)

// NewImportCommand creates the import command group.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Stage and apply item list imports",
	}
	cmd.AddCommand(newImportCSVCommand(rootOpts))
	cmd.AddCommand(newImportTextCommand(rootOpts))
	cmd.AddCommand(newImportApplyCommand(rootOpts))
	cmd.AddCommand(newImportDropCommand(rootOpts))
	return cmd
}

func reportStagedImport(cmd *cobra.Command, rootOpts *RootOptions, items []dataset.ImportedItem, checksum int) error {
	out := newFormatter(cmd, rootOpts)
	if rootOpts.Format == "json" {
		return out.Success(result.Success, map[string]interface{}{
			"items":    items,
			"checksum": checksum,
		})
	}
	for _, item := range items {
		line := fmt.Sprintf("%s / %s: %s", item.Author, item.Title, string(item.Result))
		if err := out.Successf("%s", line); err != nil {
			return err
		}
	}
	return out.Successf("staged %d item(s), checksum %d", len(items), checksum)
}

func newImportCSVCommand(rootOpts *RootOptions) *cobra.Command {
	var headerRow bool
	cmd := &cobra.Command{
		Use:           "csv <file>",
		Short:         "Stage an import from a CSV file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open the import file", err)
			}
			defer file.Close()

			items, checksum, err := app.Model.ImportCSV(rootOpts.Session, file, headerRow)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read the import file", err)
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return reportStagedImport(cmd, rootOpts, items, checksum)
		},
	}
	cmd.Flags().BoolVar(&headerRow, "header-row", true, "skip the first row as a header")
	return cmd
}

func newImportTextCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "text <file>",
		Short:         "Stage an import from the tagged text format",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read the import file", err)
			}
			items, checksum, err := app.Model.ImportText(rootOpts.Session, string(raw))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to stage the import", err)
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return reportStagedImport(cmd, rootOpts, items, checksum)
		},
	}
}

func newImportApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var defaultOwner string
	cmd := &cobra.Command{
		Use:           "apply <checksum>",
		Short:         "Apply the staged import",
		Long:          "Apply the staged import of the session. The checksum printed at staging time must be repeated to confirm the batch.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			res, skipped, renumbered := app.Model.ApplyImport(rootOpts.Session, args[0], defaultOwner)
			if !res.OK() {
				return ResultError(res, "applying the import failed")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			out := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success(res, map[string]interface{}{
					"skipped":    skipped,
					"renumbered": renumbered,
				})
			}
			for _, item := range skipped {
				line := fmt.Sprintf("skipped %s / %s: %s", item.Author, item.Title, string(item.Result))
				if err := out.Successf("%s", line); err != nil {
					return err
				}
			}
			for _, item := range renumbered {
				line := fmt.Sprintf("renumbered %s / %s: now item %d", item.Author, item.Title, *item.Number)
				if err := out.Successf("%s", line); err != nil {
					return err
				}
			}
			return out.Successf("import applied, %d skipped, %d renumbered", len(skipped), len(renumbered))
		},
	}
	cmd.Flags().StringVar(&defaultOwner, "owner", "", "owner badge for items without one")
	return cmd
}

func newImportDropCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "drop",
		Short:         "Discard the staged import",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			app.Model.DropImport(rootOpts.Session)
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("import dropped")
		},
	}
}
