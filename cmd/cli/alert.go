package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var alertListLimit int

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Manage price alerts",
}

var alertCreateCmd = &cobra.Command{
	Use:         "create <product> <target-price>",
	Short:       "Create a price alert",
	Example:     `  pricecomp alert create "lapte zuzu" 8.50`,
	Args:        cobra.ExactArgs(2),
	Annotations: needsDB(),
	RunE:        runAlertCreate,
}

var alertListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List price alerts, newest first",
	Args:        cobra.NoArgs,
	Annotations: needsDB(),
	RunE:        runAlertList,
}

func init() {
	rootCmd.AddCommand(alertCmd)
	alertCmd.AddCommand(alertCreateCmd, alertListCmd)

	alertListCmd.Flags().IntVar(&alertListLimit, "limit", 50, "Maximum number of alerts")
}

func runAlertCreate(cmd *cobra.Command, args []string) error {
	target, err := decimal.NewFromString(args[1])
	if err != nil || !target.IsPositive() {
		return fmt.Errorf("invalid target price %q", args[1])
	}

	alert, err := repository().CreateAlert(cmd.Context(), args[0], target.Round(2))
	if err != nil {
		return err
	}
	fmt.Printf("Created alert %d: %s at or below %s\n", alert.ID, alert.ProductName, alert.TargetPrice.StringFixed(2))
	return nil
}

func runAlertList(cmd *cobra.Command, args []string) error {
	alerts, err := repository().ListAlerts(cmd.Context(), alertListLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "ID\tProduct\tTarget\tStatus\tCreated\tMatch\n")
	fmt.Fprintf(w, "--\t-------\t------\t------\t-------\t-----\n")
	for _, a := range alerts {
		match := "-"
		if a.Store != nil && a.MatchPrice != nil {
			match = fmt.Sprintf("%s @ %s", *a.Store, *a.MatchPrice)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.ProductName, a.TargetPrice.StringFixed(2), a.Status, a.CreatedAt.Format(time.RFC3339), match)
	}
	return w.Flush()
}
