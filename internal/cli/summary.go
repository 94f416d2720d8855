package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/artkeep/artkeep/internal/model"
	"github.com/artkeep/artkeep/internal/result"
)

// NewSummaryCommand creates the summary command group.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Review badges and the cash drawer",
	}
	cmd.AddCommand(newSummaryBadgeCommand(rootOpts))
	cmd.AddCommand(newSummaryDrawerCommand(rootOpts))
	cmd.AddCommand(newSummaryCharityCommand(rootOpts))
	return cmd
}

func printBadgeSummary(out *OutputFormatter, summary *model.BadgeSummary) error {
	sections := []struct {
		name  string
		items []model.ItemView
	}{
		{"to take home", summary.AvailableUnsoldItems},
		{"bought", summary.AvailableBoughtItems},
		{"delivered", summary.DeliveredSoldItems},
		{"pending sale", summary.PendingSoldItems},
	}
	for _, section := range sections {
		for _, view := range section.items {
			if err := out.Successf("%s: %s", section.name, formatItemLine(view)); err != nil {
				return err
			}
		}
	}
	if err := out.Successf("gross sale %s, charity %s, bought %s, due %s",
		summary.GrossSaleAmount.String(), summary.CharityDeduction.String(),
		summary.BoughtItemsAmount.String(), summary.TotalDueAmount.String()); err != nil {
		return err
	}
	return out.Successf("checksum %d", summary.Checksum())
}

func newSummaryBadgeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "badge <badge>",
		Short:         "Show the reconciliation summary of a badge",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			badge, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid badge number", err)
			}
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			summary := app.Model.GetBadgeReconciliationSummary(badge)
			out := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success(result.Success, map[string]interface{}{
					"summary":  summary,
					"checksum": summary.Checksum(),
				})
			}
			return printBadgeSummary(out, summary)
		},
	}
}

func newSummaryDrawerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "drawer",
		Short:         "Show the cash drawer summary",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			summary := app.Model.GetCashDrawerSummary()
			out := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success(result.Success, summary)
			}
			if err := out.Successf("drawer %s, charity %s, available %s",
				summary.TotalGrossCashDrawerAmount.String(),
				summary.TotalNetCharityAmount.String(),
				summary.TotalNetAvailableAmount.String()); err != nil {
				return err
			}
			for _, buyer := range summary.BuyersToBeCleared {
				if err := out.Successf("buyer %d: %d item(s) to retrieve, pays %s",
					buyer.Badge, buyer.ItemsToRetrieve, buyer.AmountToPay.String()); err != nil {
					return err
				}
			}
			for _, owner := range summary.OwnersToBeCleared {
				if err := out.Successf("owner %d: %d item(s) to finish, receives %s",
					owner.Badge, owner.ItemsToFinish, owner.AmountToReceive.String()); err != nil {
					return err
				}
			}
			return out.Successf("%d pending item(s)", len(summary.PendingItems))
		},
	}
}

func newSummaryCharityCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "charity",
		Short:         "Show the potential charity amount",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			total := app.Model.GetPotentialCharityAmount()
			return newFormatter(cmd, rootOpts).Successf("potential charity amount %s", total.String())
		},
	}
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	var checksum int
	cmd := &cobra.Command{
		Use:           "reconcile <badge>",
		Short:         "Reconcile a badge",
		Long:          "Reconcile a badge after reviewing its summary. The checksum printed by 'summary badge' must be repeated to confirm that the reviewed data is still current.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			badge, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid badge number", err)
			}
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			res := app.Model.FinalizeReconciliation(badge, checksum)
			if !res.OK() {
				return ResultError(res, "reconciling the badge failed")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("badge %d reconciled", badge)
		},
	}
	cmd.Flags().IntVar(&checksum, "checksum", 0, "summary checksum from the review")
	_ = cmd.MarkFlagRequired("checksum")
	return cmd
}
