package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/internal/importer"
	"github.com/kosarica/price-comparator/internal/parsers/charset"
	"github.com/kosarica/price-comparator/internal/storage"
)

var importDir string

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import store price and discount sheets",
	Long: `Import price and discount sheets into the database. File names must follow
<store>_<yyyy-mm-dd>.csv|xlsx for price sheets and
<store>_discounts_<yyyy-mm-dd>.csv|xlsx for discount sheets.

A .zip bundle of such sheets is expanded and each sheet imported. A sheet
whose content was imported before is skipped. With no arguments the
configured import directory is scanned.`,
	Example: `  pricecomp import ./data/lidl_2025-05-01.csv ./data/lidl_discounts_2025-05-01.csv
  pricecomp import --dir ./data`,
	Annotations: needsDB(),
	RunE:        runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importDir, "dir", "", "Directory to scan for sheets (default is import.dir)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := importer.Options{
		Concurrency:     cfg.Import.Concurrency,
		DefaultCurrency: cfg.Import.Currency,
		Encoding:        charset.Encoding(cfg.Import.Encoding),
	}
	if cfg.Import.ArchiveDir != "" {
		archive, err := storage.NewLocalStorage(cfg.Import.ArchiveDir)
		if err != nil {
			return err
		}
		opts.Archive = archive
	}
	im := importer.New(repository(), opts, *logger)

	var results []importer.Result
	if len(args) > 0 {
		results = im.ImportFiles(ctx, args)
	} else {
		dir := importDir
		if dir == "" {
			dir = cfg.Import.Dir
		}
		var err error
		if results, err = im.ImportDir(ctx, dir); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "File\tStatus\tRows\tRow Errors\tDetail\n")
	fmt.Fprintf(w, "----\t------\t----\t----------\t------\n")
	failed := 0
	for _, r := range results {
		rows, detail := 0, ""
		if r.Run != nil {
			rows, detail = r.Run.RowCount, r.Run.ID
		}
		if r.Err != nil {
			failed++
			detail = r.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.File, r.Status, rows, len(r.ParseErrors), detail)
	}
	w.Flush()

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(results))
	}
	return nil
}
