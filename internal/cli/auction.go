package cli

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/artkeep/artkeep/internal/result"
)

// NewAuctionCommand creates the auction command group.
func NewAuctionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auction",
		Short: "Run the live auction block",
	}
	cmd.AddCommand(newAuctionShowCommand(rootOpts))
	cmd.AddCommand(newAuctionSendCommand(rootOpts))
	cmd.AddCommand(newAuctionBidCommand(rootOpts))
	cmd.AddCommand(newAuctionSellCommand(rootOpts))
	cmd.AddCommand(newAuctionClearCommand(rootOpts))
	return cmd
}

func newAuctionShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show the item on the auction block",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			view := app.Model.GetItemInAuction()
			out := newFormatter(cmd, rootOpts)
			if view == nil {
				return out.Successf("no item on the auction block")
			}
			if rootOpts.Format == "json" {
				return out.Success(result.Success, view)
			}
			return out.Successf("%s", formatItemLine(*view))
		},
	}
}

func newAuctionSendCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "send <code>",
		Short:         "Put an item on the auction block",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			view := app.Model.SendItemToAuction(args[0])
			if view == nil {
				return NewExitError(ExitFailure, "item cannot go on the auction block")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("item %s is on the auction block", view.Code)
		},
	}
}

func newAuctionBidCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "bid <amount>",
		Short:         "Record a new highest bid",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid bid amount", err)
			}
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			if !app.Model.UpdateItemInAuction(amount) {
				return NewExitError(ExitFailure, "no valid item on the auction block")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("bid updated to %s", amount.String())
		},
	}
}

func newAuctionSellCommand(rootOpts *RootOptions) *cobra.Command {
	var unchanged bool
	cmd := &cobra.Command{
		Use:           "sell [buyer]",
		Short:         "Sell the item on the auction block",
		Long:          "Sell the item on the auction block to the given buyer at the running auction amount, or with --unchanged keep the pre-auction buyer and amount.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			sold := false
			if unchanged {
				sold = app.Model.SellItemInAuctionNoChange()
			} else {
				if len(args) != 1 {
					return NewExitError(ExitCommandError, "a buyer badge is required unless --unchanged is set")
				}
				buyer, err := strconv.Atoi(args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid buyer badge", err)
				}
				sold = app.Model.SellItemInAuction(buyer)
			}
			if !sold {
				return NewExitError(ExitFailure, "selling the auctioned item failed")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("auction closed")
		},
	}
	cmd.Flags().BoolVar(&unchanged, "unchanged", false, "keep the pre-auction buyer and amount")
	return cmd
}

func newAuctionClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Take the current item off the block without selling",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			app.Model.ClearAuction()
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("auction block cleared")
		},
	}
}
