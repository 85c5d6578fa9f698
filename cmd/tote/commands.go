package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/five82/tote/internal/app"
	"github.com/five82/tote/internal/logtail"
	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/orders"
	"github.com/five82/tote/internal/shop"
)

// withEnv opens the application, runs fn and closes it.
func withEnv(opts app.Options, fn func(*app.Env) error) error {
	env, err := app.Open(opts)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}

// settle waits for a dispatched mutation and turns a failure into its error.
func settle[T any](ctx context.Context, t *mutation.Task[T]) (mutation.Result[T], error) {
	res, err := t.Wait(ctx)
	if err != nil {
		return res, err
	}
	if !res.OK() {
		return res, res.Err
	}
	return res, nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func formatMoney(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

func newCartCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags.options(), func(env *app.Env) error {
				if err := env.Refresh(cmd.Context()); err != nil {
					return err
				}
				lines := env.Store.Cart.Lines()
				out := cmd.OutOrStdout()
				if len(lines) == 0 {
					fmt.Fprintln(out, "Your cart is empty.")
					return nil
				}
				tw := newTable(out)
				fmt.Fprintln(tw, "ID\tPRODUCT\tSIZE\tQTY\tPRICE\tTOTAL\t")
				for _, l := range lines {
					hint := ""
					if l.LowStock() {
						hint = fmt.Sprintf("only %d left", l.Stock)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
						l.ID, l.Product.Name, l.Size.Value, l.Quantity.Value,
						formatMoney(l.Product.SalePrice), formatMoney(l.LineTotal()), hint)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nSubtotal %s\n", formatMoney(env.Store.Cart.Subtotal()))
				return nil
			})
		},
	}
}

func newAddressesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "addresses",
		Aliases: []string{"addr"},
		Short:   "List saved addresses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags.options(), func(env *app.Env) error {
				if err := env.Refresh(cmd.Context()); err != nil {
					return err
				}
				addrs := env.Store.Addresses.Addresses()
				out := cmd.OutOrStdout()
				if len(addrs) == 0 {
					fmt.Fprintln(out, "No saved addresses.")
					return nil
				}
				tw := newTable(out)
				fmt.Fprintln(tw, "\tID\tNAME\tPINCODE\tLOCALITY")
				for _, a := range addrs {
					mark := ""
					if a.IsDefaultAddress {
						mark = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, a.ID, a.FullName(), a.Pincode, a.Locality())
				}
				return tw.Flush()
			})
		},
	}
}

func newOrdersCmd(flags *globalFlags) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			opts.PageSize = limit
			return withEnv(opts, func(env *app.Env) error {
				env.Store.Orders.GoTo(page)
				if err := env.Refresh(cmd.Context()); err != nil {
					return err
				}
				return printOrders(cmd.OutOrStdout(), env.Store.Orders.Orders(), env.Store.Orders.Info())
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().IntVar(&limit, "limit", 0, "orders per page (default from config)")
	return cmd
}

func printOrders(out io.Writer, list []orders.OrderView, info orders.PageInfo) error {
	if len(list) == 0 {
		fmt.Fprintln(out, "No orders yet.")
		return nil
	}
	tw := newTable(out)
	for _, o := range list {
		fmt.Fprintf(tw, "Order %s\t%s\t%s\t%s\n", o.OrderNumber, o.ID, formatMoney(o.TotalAmount), o.PaymentMethod)
		for _, it := range o.ItemViews {
			fmt.Fprintf(tw, "  %s\t%s\t%s x%d\t%s\n", it.ID, it.Product.Name, it.Size, it.Quantity, it.StatusView.Value)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPage %d of %d (%d orders)\n", info.Page, max(info.TotalPages, 1), info.Total)
	return nil
}

func newDefaultCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "default <addressId>",
		Short: "Make an address the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags.options(), func(env *app.Env) error {
				if err := env.Refresh(cmd.Context()); err != nil {
					return err
				}
				t, err := env.Store.Addresses.SetDefault(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if t == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Already the default address.")
					return nil
				}
				if _, err := settle(cmd.Context(), t); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Default address updated.")
				return nil
			})
		},
	}
}

func newCancelCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <orderId> <itemId>",
		Short: "Cancel an order item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags.options(), func(env *app.Env) error {
				if err := env.Refresh(cmd.Context()); err != nil {
					return err
				}
				t, err := env.Store.Orders.Cancel(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return reportItem(cmd.Context(), cmd.OutOrStdout(), env, t, args[0], args[1])
			})
		},
	}
}

func newReturnCmd(flags *globalFlags) *cobra.Command {
	var reason, remarks string
	cmd := &cobra.Command{
		Use:   "return <orderId> <itemId>",
		Short: "Request a return for a delivered item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags.options(), func(env *app.Env) error {
				if err := env.Refresh(cmd.Context()); err != nil {
					return err
				}
				t, err := env.Store.Orders.Return(cmd.Context(), args[0], args[1], reason, remarks)
				if err != nil {
					return err
				}
				return reportItem(cmd.Context(), cmd.OutOrStdout(), env, t, args[0], args[1])
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the item is being returned (required)")
	cmd.Flags().StringVar(&remarks, "remarks", "", "additional remarks")
	return cmd
}

// reportItem waits for an item status change and prints the resulting status.
func reportItem(ctx context.Context, out io.Writer, env *app.Env, t *mutation.Task[shop.OrderItem], orderID, itemID string) error {
	if _, err := settle(ctx, t); err != nil {
		return err
	}
	status := ""
	if o, ok := env.Store.Orders.Order(orderID); ok {
		for _, it := range o.ItemViews {
			if it.ID == itemID {
				status = it.StatusView.Value
			}
		}
	}
	fmt.Fprintf(out, "Item %s is now %s.\n", itemID, status)
	return nil
}

func newCheckoutCmd(flags *globalFlags) *cobra.Command {
	var payment, addressID string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags.options(), func(env *app.Env) error {
				if err := env.Refresh(cmd.Context()); err != nil {
					return err
				}
				if len(env.Store.Cart.Lines()) == 0 {
					return fmt.Errorf("your cart is empty")
				}
				id := strings.TrimSpace(addressID)
				if id == "" {
					id = env.Store.Addresses.DefaultID()
				}
				t, err := env.Store.Orders.Place(cmd.Context(), shop.CreateOrderRequest{AddressID: id, PaymentMethod: payment})
				if err != nil {
					return err
				}
				res, err := settle(cmd.Context(), t)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Order %s placed.\n", res.Value.Order.OrderNumber)
				if res.Value.PaymentOrderID != "" {
					fmt.Fprintf(out, "Complete payment %s to confirm it.\n", res.Value.PaymentOrderID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&payment, "payment", orders.PaymentCashOnDelivery, "payment method")
	cmd.Flags().StringVar(&addressID, "address", "", "delivery address id (default address if empty)")
	return cmd
}

func newLogCmd(flags *globalFlags) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity from the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags.options(), func(env *app.Env) error {
				entries, err := logtail.ReadEntries(env.Config.LogFile, lines)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range entries {
					fmt.Fprintln(out, logtail.Format(e))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show")
	return cmd
}
