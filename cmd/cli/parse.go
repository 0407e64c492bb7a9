package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/internal/importer"
	"github.com/kosarica/price-comparator/internal/parsers/charset"
	"github.com/kosarica/price-comparator/internal/types"
)

var (
	parseOutput   string
	parseEncoding string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a sheet without importing it",
	Long: `Parse a local price or discount sheet (CSV or XLSX) and report row counts,
validation errors and a sample of the parsed rows. Nothing is written to the
database.

Supported encodings: auto (default), utf-8, windows-1250, iso-8859-2, iso-8859-16`,
	Example: `  pricecomp parse ./data/lidl_2025-05-01.csv
  pricecomp parse ./data/profi_discounts_2025-05-01.csv --encoding windows-1250
  pricecomp parse ./data/kaufland_2025-05-01.xlsx --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseOutput, "output", "table", "Output format: table or json")
	parseCmd.Flags().StringVar(&parseEncoding, "encoding", "auto", "File encoding for CSV sheets")
}

func runParse(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	logger.Debug().Str("file", args[0]).Int("bytes", len(content)).Msg("Parsing sheet")

	opts := importer.Options{}
	if cfg != nil {
		opts.DefaultCurrency = cfg.Import.Currency
	}
	if parseEncoding != "auto" {
		opts.Encoding = charset.Encoding(strings.ToLower(parseEncoding))
	}

	info, result, err := importer.ParseFile(filepath.Base(args[0]), content, opts)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	switch strings.ToLower(parseOutput) {
	case "json":
		return writeJSON(map[string]any{"file": info, "result": result})
	case "table":
		outputParseTable(info, result)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", parseOutput)
	}
}

const parseReportLimit = 10

func outputParseTable(info types.FileInfo, result *types.ParseResult) {
	fmt.Printf("%s: %s %s sheet dated %s\n\n", info.Name, info.StoreKey, result.Kind, info.Date.Format(time.DateOnly))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "rows\tvalid\tinvalid\terrors\n")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", result.TotalRows, result.ValidRows, result.TotalRows-result.ValidRows, len(result.Errors))
	w.Flush()

	if len(result.Errors) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ROW\tFIELD\tERROR\n")
		for _, e := range lo.Slice(result.Errors, 0, parseReportLimit) {
			row := lo.Ternary(e.RowNumber != nil, strconv.Itoa(lo.FromPtr(e.RowNumber)), "-")
			fmt.Fprintf(w, "%s\t%s\t%s\n", row, lo.FromPtrOr(e.Field, "-"), e.Message)
		}
		w.Flush()
		if hidden := len(result.Errors) - parseReportLimit; hidden > 0 {
			fmt.Printf("(%d more)\n", hidden)
		}
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	switch result.Kind {
	case types.SheetPrices:
		fmt.Fprintf(w, "PRODUCT\tNAME\tPRICE\n")
		for _, row := range lo.Slice(result.Prices, 0, parseReportLimit) {
			fmt.Fprintf(w, "%s\t%s\t%s %s\n", row.ProductKey, row.Name, row.Price.StringFixed(2), row.Currency)
		}
	case types.SheetDiscounts:
		fmt.Fprintf(w, "PRODUCT\tNAME\tOFF\tFROM\tTO\n")
		for _, row := range lo.Slice(result.Discounts, 0, parseReportLimit) {
			fmt.Fprintf(w, "%s\t%s\t%s%%\t%s\t%s\n", row.ProductKey, row.Name, row.PercentOff.String(),
				row.FromDate.Format(time.DateOnly), row.ToDate.Format(time.DateOnly))
		}
	}
}
