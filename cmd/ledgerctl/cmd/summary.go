package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"cashflowbot/internal/money"
	"cashflowbot/internal/report"
	"cashflowbot/internal/service"
	"cashflowbot/internal/store"
)

func (c *cli) summaryCmd() *cobra.Command {
	var asJSON bool
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Print income/expense statements",
	}
	summary.PersistentFlags().BoolVar(&asJSON, "json", false, "print the statement as JSON")

	today := &cobra.Command{
		Use:   "today",
		Short: "Statement for the current day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd, func(repo store.Repository) error {
				st, err := service.New(repo, c.now).TodayStatement(cmd.Context())
				if err != nil {
					return err
				}
				return printStatement(cmd.OutOrStdout(), "Ngày "+st.Date, st, asJSON)
			})
		},
	}

	var month, year int
	monthCmd := &cobra.Command{
		Use:   "month",
		Short: "Statement for one month (default: current month)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd, func(repo store.Repository) error {
				st, err := service.New(repo, c.now).MonthStatement(cmd.Context(), time.Month(month), year)
				if err != nil {
					return err
				}
				title := fmt.Sprintf("Tháng %02d/%d", st.Month, st.Year)
				return printStatement(cmd.OutOrStdout(), title, st, asJSON)
			})
		},
	}
	monthCmd.Flags().IntVar(&month, "month", 0, "month 1-12")
	monthCmd.Flags().IntVar(&year, "year", 0, "four-digit year")

	summary.AddCommand(today, monthCmd)
	return summary
}

func printStatement(w io.Writer, title string, st report.Statement, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	fmt.Fprintf(w, "== %s ==\n", title)
	fmt.Fprintf(w, "Doanh thu:  %s (%d đơn, %d sp)\n", money.Format(st.Sales.Revenue), st.Sales.Count, st.Sales.Quantity)
	fmt.Fprintf(w, "Lợi nhuận:  %s\n", money.Format(st.Sales.Profit))
	fmt.Fprintf(w, "Chi tiêu:   %s (%d khoản)\n", money.Format(st.Expenses.Total), st.Expenses.Count)
	for _, ct := range st.Expenses.ByCategory {
		fmt.Fprintf(w, "  - %s: %s\n", ct.Category, money.Format(ct.Total))
	}
	fmt.Fprintf(w, "Cân đối:    %s\n", money.Format(st.Balance))
	return nil
}
