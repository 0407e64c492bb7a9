package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/internal/optimizer"
)

var (
	basketDate string

	historyStore    string
	historyBrand    string
	historyCategory string
	historyFrom     string
	historyTo       string
	historyToday    string

	discountsDate  string
	discountsLimit int
)

var basketCmd = &cobra.Command{
	Use:         "basket <product>...",
	Short:       "Split a shopping list across stores at the lowest prices",
	Example:     `  pricecomp basket "lapte zuzu" "paine alba" --date 2025-05-08`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: needsDB(),
	RunE:        runBasket,
}

var historyCmd = &cobra.Command{
	Use:         "history <product>",
	Short:       "Show the day-by-day price timeline of a product in every store",
	Example:     `  pricecomp history "lapte zuzu" --store lidl --from 2025-05-01 --to 2025-05-14`,
	Args:        cobra.ExactArgs(1),
	Annotations: needsDB(),
	RunE:        runHistory,
}

var discountsCmd = &cobra.Command{
	Use:   "discounts",
	Short: "Query store discounts",
}

var discountsBestCmd = &cobra.Command{
	Use:         "best",
	Short:       "List the largest discounts active on a date",
	Args:        cobra.NoArgs,
	Annotations: needsDB(),
	RunE:        runDiscountsBest,
}

var discountsNewCmd = &cobra.Command{
	Use:         "new",
	Short:       "List discounts that started recently",
	Args:        cobra.NoArgs,
	Annotations: needsDB(),
	RunE:        runDiscountsNew,
}

func init() {
	rootCmd.AddCommand(basketCmd, historyCmd, discountsCmd)
	discountsCmd.AddCommand(discountsBestCmd, discountsNewCmd)

	basketCmd.Flags().StringVar(&basketDate, "date", "", "Shopping date (YYYY-MM-DD, defaults to today)")

	historyCmd.Flags().StringVar(&historyStore, "store", "", "Only this store")
	historyCmd.Flags().StringVar(&historyBrand, "brand", "", "Only this brand")
	historyCmd.Flags().StringVar(&historyCategory, "category", "", "Only this category")
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "Window start (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "Window end (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&historyToday, "today", "", "Reference date for the default window (YYYY-MM-DD)")

	for _, c := range []*cobra.Command{discountsBestCmd, discountsNewCmd} {
		c.Flags().StringVar(&discountsDate, "date", "", "Reference date (YYYY-MM-DD, defaults to today)")
	}
	discountsBestCmd.Flags().IntVar(&discountsLimit, "limit", 20, "Maximum number of discounts")
}

func runBasket(cmd *cobra.Command, args []string) error {
	date, err := dayFlag(basketDate)
	if err != nil {
		return err
	}
	svc, err := newService(cmd.Context())
	if err != nil {
		return err
	}

	result, err := svc.OptimizeBasket(cmd.Context(), args, date)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Store\tProduct\tPrice\tDiscount\n")
	fmt.Fprintf(w, "-----\t-------\t-----\t--------\n")
	for _, store := range result.Stores {
		for _, line := range store.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s%%\n", store.StoreName, line.ProductName, line.Price.StringFixed(2), line.PercentOff.String())
		}
		fmt.Fprintf(w, "%s\tsubtotal\t%s\t\n", store.StoreName, store.Total.StringFixed(2))
	}
	w.Flush()

	fmt.Printf("\nTotal on %s: %s\n", date.Format(time.DateOnly), result.Total.StringFixed(2))
	if len(result.NotFound) > 0 {
		fmt.Printf("Not found: %v\n", result.NotFound)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	today, err := dayFlag(historyToday)
	if err != nil {
		return err
	}
	q := optimizer.HistoryQuery{
		ProductName: args[0],
		Store:       historyStore,
		Brand:       historyBrand,
		Category:    historyCategory,
	}
	if historyFrom != "" {
		from, err := dayFlag(historyFrom)
		if err != nil {
			return err
		}
		q.From = &from
	}
	if historyTo != "" {
		to, err := dayFlag(historyTo)
		if err != nil {
			return err
		}
		q.To = &to
	}

	svc, err := newService(cmd.Context())
	if err != nil {
		return err
	}
	result, err := svc.PriceHistory(cmd.Context(), q, today)
	if err != nil {
		return err
	}

	p := result.Product
	fmt.Printf("%s (%s, %s %s)\n\n", p.Name, lo.Ternary(p.Brand != "", p.Brand, "-"), p.PackageQuantity.String(), p.PackageUnit)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Store\tFrom\tTo\tBase\tDiscount\tPrice\n")
	fmt.Fprintf(w, "-----\t----\t--\t----\t--------\t-----\n")
	for _, row := range result.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%s\n",
			row.StoreName,
			row.FromDate.Format(time.DateOnly),
			row.ToDate.Format(time.DateOnly),
			row.BasePrice.StringFixed(2),
			row.PercentOff.String(),
			row.EffectivePrice.StringFixed(2),
		)
	}
	return w.Flush()
}

func runDiscountsBest(cmd *cobra.Command, args []string) error {
	date, err := dayFlag(discountsDate)
	if err != nil {
		return err
	}
	svc, err := newService(cmd.Context())
	if err != nil {
		return err
	}
	offers, err := svc.BestDiscounts(cmd.Context(), date, discountsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Store\tProduct\tBrand\tBase\tDiscount\tPrice\n")
	fmt.Fprintf(w, "-----\t-------\t-----\t----\t--------\t-----\n")
	for _, o := range offers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%s\n",
			o.StoreName, o.Product.Name, o.Product.Brand,
			o.BasePrice.StringFixed(2), o.PercentOff.String(), o.DiscountedPrice.StringFixed(2))
	}
	return w.Flush()
}

func runDiscountsNew(cmd *cobra.Command, args []string) error {
	today, err := dayFlag(discountsDate)
	if err != nil {
		return err
	}
	svc, err := newService(cmd.Context())
	if err != nil {
		return err
	}
	found, err := svc.NewDiscounts(cmd.Context(), today)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Store\tProduct\tFrom\tTo\tDiscount\tPrice\n")
	fmt.Fprintf(w, "-----\t-------\t----\t--\t--------\t-----\n")
	for _, d := range found {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%s\n",
			d.StoreName, d.Product.Name,
			d.FromDate.Format(time.DateOnly), d.ToDate.Format(time.DateOnly),
			d.PercentOff.String(), d.DiscountedPrice.StringFixed(2))
	}
	return w.Flush()
}
