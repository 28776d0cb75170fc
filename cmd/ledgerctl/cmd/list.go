package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"cashflowbot/internal/app"
	"cashflowbot/internal/money"
	"cashflowbot/internal/report"
	"cashflowbot/internal/service"
	"cashflowbot/internal/store"
)

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create missing tables and header rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd, func(repo store.Repository) error {
				if err := app.InitLedger(cmd.Context(), repo); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ledger ready")
				return nil
			})
		},
	}
}

func (c *cli) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd, func(repo store.Repository) error {
				products, err := service.New(repo, c.now).ListProducts(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ROW\tSKU\tNAME\tCOST")
				for _, p := range products {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.Row, p.SKU, p.Name, money.Format(p.Cost))
				}
				return w.Flush()
			})
		},
	}
}

func (c *cli) salesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List the most recent sales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd, func(repo store.Repository) error {
				sales, err := service.New(repo, c.now).RecentSales(cmd.Context(), limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ROW\tDATE\tSKU\tQTY\tREVENUE\tPROFIT\tCUSTOMER")
				for _, s := range sales {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
						s.Row, s.Date, s.SKU, s.Quantity, money.Format(s.Revenue), money.Format(s.Profit), s.Customer)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", service.RecentLimit, "number of sales to show")
	return cmd
}

func (c *cli) debtsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "debts",
		Short: "List pending debts grouped by customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd, func(repo store.Repository) error {
				svc := service.New(repo, c.now)
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				if all {
					debts, err := svc.ListDebts(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintln(w, "ROW\tDATE\tCUSTOMER\tAMOUNT\tSTATUS")
					for _, d := range debts {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.Row, d.Date, d.Customer, money.Format(d.Amount), d.Status)
					}
					return w.Flush()
				}

				groups, err := svc.DebtsByCustomer(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "CUSTOMER\tCOUNT\tTOTAL")
				for _, g := range groups {
					fmt.Fprintf(w, "%s\t%d\t%s\n", g.Customer, g.Count, money.Format(g.Total))
				}
				fmt.Fprintf(w, "TOTAL\t\t%s\n", money.Format(totalOf(groups)))
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every debt row, paid ones included")
	return cmd
}

func totalOf(groups []report.CustomerDebt) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Total)
	}
	return total
}
