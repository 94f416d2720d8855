package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/result"
)

// NewCurrenciesCommand creates the currencies command group.
func NewCurrenciesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currencies",
		Short: "Show and update currency conversion rates",
	}
	cmd.AddCommand(newCurrenciesListCommand(rootOpts))
	cmd.AddCommand(newCurrenciesUpdateCommand(rootOpts))
	cmd.AddCommand(newCurrenciesConvertCommand(rootOpts))
	return cmd
}

func newCurrenciesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the configured currencies",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			infos := app.Currency.Info()
			out := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success(result.Success, infos)
			}
			for _, info := range infos {
				rate := "?"
				if info.AmountInPrimary != nil {
					rate = info.AmountInPrimary.String()
				}
				if err := out.Successf("%s  rate=%s", info.Code, rate); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// parseRateArgs parses code=rate pairs into currency info entries.
func parseRateArgs(args []string) ([]dataset.CurrencyInfo, error) {
	infos := make([]dataset.CurrencyInfo, 0, len(args))
	for _, arg := range args {
		code, rate, found := strings.Cut(arg, "=")
		if !found || code == "" {
			return nil, fmt.Errorf("expected code=rate, got %q", arg)
		}
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q for %s: %w", rate, code, err)
		}
		infos = append(infos, dataset.CurrencyInfo{Code: code, AmountInPrimary: &parsed})
	}
	return infos, nil
}

func newCurrenciesUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "update <code=rate>...",
		Short:         "Update conversion rates",
		Long:          "Update conversion rates, given as code=rate pairs in the configured currency order. The primary currency rate is fixed at 1.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := parseRateArgs(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid rate arguments", err)
			}
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			res := app.Currency.UpdateInfo(infos)
			if res != result.Success && res != result.PartialSuccess {
				return ResultError(res, "updating the rates failed")
			}
			if err := app.Persist(); err != nil {
				return err
			}
			return newFormatter(cmd, rootOpts).Successf("rates updated: %s", string(res))
		},
	}
}

func newCurrenciesConvertCommand(rootOpts *RootOptions) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:           "convert <amount>",
		Short:         "Convert an amount of the primary currency",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid amount", err)
			}
			app, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			converted := app.Currency.ConvertToAll(amount)
			out := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success(result.Success, converted)
			}
			for i, c := range converted {
				if err := out.Successf("%s  %s", c.Code,
					app.Formatter.FormatCurrency(converted[i], lang)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "display language")
	return cmd
}
