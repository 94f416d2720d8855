package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artkeep/artkeep/internal/model"
	"github.com/artkeep/artkeep/internal/result"
)

// ItemOptions holds the raw field values shared by the add and update
// commands. Empty means unset.
type ItemOptions struct {
	Owner        string
	Title        string
	Author       string
	Medium       string
	Amount       string
	Charity      string
	Note         string
	ImportNumber string
}

func addItemFlags(cmd *cobra.Command, opts *ItemOptions) {
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "badge number of the owner")
	cmd.Flags().StringVar(&opts.Title, "title", "", "item title")
	cmd.Flags().StringVar(&opts.Author, "author", "", "item author")
	cmd.Flags().StringVar(&opts.Medium, "medium", "", "medium of the item")
	cmd.Flags().StringVar(&opts.Amount, "amount", "", "initial sale amount in the primary currency")
	cmd.Flags().StringVar(&opts.Charity, "charity", "", "charity percentage (0-100)")
	cmd.Flags().StringVar(&opts.Note, "note", "", "free-form note")
}

// NewItemsCommand creates the items command group.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Register, list and close consignment items",
	}
	cmd.AddCommand(newItemsListCommand(rootOpts))
	cmd.AddCommand(newItemsDeliverableCommand(rootOpts))
	cmd.AddCommand(newItemsAddCommand(rootOpts))
	cmd.AddCommand(newItemsUpdateCommand(rootOpts))
	cmd.AddCommand(newItemsCloseCommand(rootOpts))
	cmd.AddCommand(newItemsUnsoldCommand(rootOpts))
	cmd.AddCommand(newItemsDeleteCommand(rootOpts))
	return cmd
}

func formatItemLine(view model.ItemView) string {
	parts := []string{view.Code, string(view.State),
		fmt.Sprintf("owner=%d", view.Owner), view.Author, view.Title}
	if view.InitialAmount != nil {
		parts = append(parts, "initial="+view.InitialAmount.String())
	}
	if view.Amount != nil {
		parts = append(parts, "amount="+view.Amount.String())
	}
	if view.Buyer != 0 {
		parts = append(parts, fmt.Sprintf("buyer=%d", view.Buyer))
	}
	return strings.Join(parts, "  ")
}

func newItemsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all registered items",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			views := app.Model.GetAllItems()
			out := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success(result.Success, views)
			}
			for _, view := range views {
				if err := out.Successf("%s", formatItemLine(view)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newItemsDeliverableCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "deliverable",
		Short:         "List items waiting to be handed over",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			views := app.Model.GetAllDeliverableItems()
			out := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success(result.Success, views)
			}
			for _, view := range views {
				if err := out.Successf("%s", formatItemLine(view)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newItemsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemOptions{}
	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Register a new item",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			code, res := app.Model.AddNewItem(rootOpts.Session,
				opts.Owner, opts.Title, opts.Author, opts.Medium,
				opts.Amount, opts.Charity, opts.Note, opts.ImportNumber)
			if !res.OK() {
				return ResultError(res, "adding the item failed")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("added item %s", code)
		},
	}
	addItemFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.ImportNumber, "import-number", "", "import number to keep with the item")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newItemsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemOptions{}
	var state, saleAmount, buyer string
	cmd := &cobra.Command{
		Use:           "update <code>",
		Short:         "Update the fields of an item",
		Long:          "Update the fields of an item. Every field is replaced by its flag value; an empty value clears the field.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			res := app.Model.UpdateItem(args[0],
				opts.Owner, opts.Title, opts.Author, opts.Medium, state,
				opts.Amount, opts.Charity, saleAmount, buyer, opts.Note)
			if !res.OK() {
				return ResultError(res, "updating the item failed")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("updated item %s", args[0])
		},
	}
	addItemFlags(cmd, opts)
	cmd.Flags().StringVar(&state, "state", "", "item state code")
	cmd.Flags().StringVar(&saleAmount, "sale-amount", "", "final sale amount")
	cmd.Flags().StringVar(&buyer, "buyer", "", "badge number of the buyer")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func newItemsCloseCommand(rootOpts *RootOptions) *cobra.Command {
	var amount, buyer string
	var toAuction bool
	cmd := &cobra.Command{
		Use:           "close <code>",
		Short:         "Close the sale of an item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			var res result.Result
			if toAuction {
				res = app.Model.CloseItemIntoAuction(args[0], amount, buyer)
			} else {
				res = app.Model.CloseItemAsSold(args[0], amount, buyer)
			}
			if !res.OK() {
				return ResultError(res, "closing the item failed")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("closed item %s", args[0])
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "sale amount in the primary currency")
	cmd.Flags().StringVar(&buyer, "buyer", "", "badge number of the buyer")
	cmd.Flags().BoolVar(&toAuction, "auction", false, "send the item to the auction instead of selling directly")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("buyer")
	return cmd
}

func newItemsUnsoldCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "unsold <code>",
		Short:         "Close an item as not sold",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			res := app.Model.CloseItemAsNotSold(args[0])
			if !res.OK() {
				return ResultError(res, "closing the item failed")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("item %s set as not sold", args[0])
		},
	}
}

func newItemsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <code>...",
		Short:         "Delete items",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			deleted := app.Model.DeleteItems(args)
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("deleted %d item(s)", deleted)
		},
	}
}
