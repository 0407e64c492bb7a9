// Package importer loads store price and discount sheets into the database.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kosarica/price-comparator/internal/database"
	"github.com/kosarica/price-comparator/internal/parsers/bundle"
	"github.com/kosarica/price-comparator/internal/parsers/charset"
	"github.com/kosarica/price-comparator/internal/parsers/csv"
	"github.com/kosarica/price-comparator/internal/parsers/sheet"
	"github.com/kosarica/price-comparator/internal/parsers/xlsx"
	"github.com/kosarica/price-comparator/internal/storage"
	"github.com/kosarica/price-comparator/internal/types"
)

// Store persists imported sheets and the import ledger.
type Store interface {
	UpsertStore(ctx context.Context, key, name string) (database.Store, error)
	SavePrices(ctx context.Context, store database.Store, sheetDate time.Time, records []database.PriceRecord) error
	SaveDiscounts(ctx context.Context, store database.Store, records []database.DiscountRecord) error
	ImportRunExists(ctx context.Context, signature string) (bool, error)
	RecordImportRun(ctx context.Context, run *database.ImportRun) (bool, error)
}

// Status is the outcome of importing one file.
type Status string

const (
	StatusImported Status = "imported"
	StatusSkipped  Status = "skipped" // Same content was imported before
	StatusFailed   Status = "failed"
)

// ErrEmptySheet is returned when a sheet has no valid rows.
var ErrEmptySheet = errors.New("sheet has no valid rows")

// Result describes one imported file.
type Result struct {
	File        string              `json:"file"`
	Status      Status              `json:"status"`
	Run         *database.ImportRun `json:"run,omitempty"`
	ParseErrors []types.ParseError  `json:"parseErrors,omitempty"`
	Err         error               `json:"-"`
}

// Options configures an Importer.
type Options struct {
	Concurrency     int
	DefaultCurrency string
	Encoding        charset.Encoding // Empty means detect per file
	Archive         storage.Storage  // Keeps the raw content of imported sheets; nil disables
}

// Importer parses sheet files and writes them through a Store.
type Importer struct {
	store  Store
	opts   Options
	logger zerolog.Logger
	titler cases.Caser
}

// New creates an Importer.
func New(store Store, opts Options, logger zerolog.Logger) *Importer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "RON"
	}
	return &Importer{
		store:  store,
		opts:   opts,
		logger: logger.With().Str("component", "importer").Logger(),
		titler: cases.Title(language.Und),
	}
}

// ParseFile parses sheet content. The file name decides the store, date,
// sheet kind and format.
func ParseFile(name string, content []byte, opts Options) (types.FileInfo, *types.ParseResult, error) {
	info, err := sheet.ParseFileName(name)
	if err != nil {
		return types.FileInfo{}, nil, err
	}

	var result *types.ParseResult
	switch info.Type {
	case types.FileTypeCSV:
		csvOpts := csv.DefaultOptions()
		csvOpts.Encoding = opts.Encoding
		if opts.DefaultCurrency != "" {
			csvOpts.DefaultCurrency = opts.DefaultCurrency
		}
		result, err = csv.NewParser(csvOpts).Parse(content, info.Kind)
	case types.FileTypeXLSX:
		xlsxOpts := xlsx.DefaultOptions()
		if opts.DefaultCurrency != "" {
			xlsxOpts.DefaultCurrency = opts.DefaultCurrency
		}
		result, err = xlsx.NewParser(xlsxOpts).Parse(content, info.Kind)
	default:
		return info, nil, fmt.Errorf("unsupported file type %q", info.Type)
	}
	if err != nil {
		return info, nil, fmt.Errorf("parse %s: %w", info.Name, err)
	}
	return info, result, nil
}

// Import reads and imports a file from disk. A .zip bundle yields one
// result per sheet inside it.
func (im *Importer) Import(ctx context.Context, path string) []Result {
	name := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return []Result{im.fail(Result{File: name}, fmt.Errorf("read %s: %w", path, err))}
	}
	if bundle.IsBundle(name) {
		return im.ImportBundle(ctx, name, content)
	}
	return []Result{im.ImportFile(ctx, name, content)}
}

// ImportBundle imports every sheet inside a zip archive, one at a time.
// Entries whose names do not follow the sheet naming scheme are ignored.
func (im *Importer) ImportBundle(ctx context.Context, name string, content []byte) []Result {
	entries, err := bundle.Expand(ctx, content, bundle.DefaultOptions())
	if err != nil {
		return []Result{im.fail(Result{File: name}, fmt.Errorf("expand %s: %w", name, err))}
	}

	var results []Result
	for _, e := range entries {
		if _, err := sheet.ParseFileName(e.Name); err != nil {
			im.logger.Debug().Str("bundle", name).Str("file", e.Name).Msg("Ignoring bundle entry with unrecognized name")
			continue
		}
		res := im.ImportFile(ctx, e.Name, e.Content)
		res.File = name + "/" + e.Name
		results = append(results, res)
	}
	return results
}

// ImportFile imports sheet content. A sheet whose signature was already
// recorded is skipped without touching the data tables.
func (im *Importer) ImportFile(ctx context.Context, name string, content []byte) Result {
	res := Result{File: name}

	info, parsed, err := ParseFile(name, content, im.opts)
	if err != nil {
		return im.fail(res, err)
	}
	res.ParseErrors = parsed.Errors
	rowErrors.Add(float64(len(parsed.Errors)))

	if parsed.ValidRows == 0 {
		return im.fail(res, fmt.Errorf("%s: %w", name, ErrEmptySheet))
	}

	signature := Signature(info, parsed)
	exists, err := im.store.ImportRunExists(ctx, signature)
	if err != nil {
		return im.fail(res, err)
	}
	if exists {
		im.logger.Info().Str("file", name).Str("signature", signature).Msg("Sheet already imported, skipping")
		filesImported.WithLabelValues(string(StatusSkipped)).Inc()
		res.Status = StatusSkipped
		return res
	}

	store, err := im.store.UpsertStore(ctx, info.StoreKey, im.storeName(info.StoreKey))
	if err != nil {
		return im.fail(res, err)
	}

	switch parsed.Kind {
	case types.SheetPrices:
		err = im.store.SavePrices(ctx, store, info.Date, priceRecords(parsed.Prices))
	case types.SheetDiscounts:
		err = im.store.SaveDiscounts(ctx, store, discountRecords(parsed.Discounts))
	default:
		err = fmt.Errorf("unknown sheet kind %q", parsed.Kind)
	}
	if err != nil {
		return im.fail(res, fmt.Errorf("save %s: %w", name, err))
	}

	run := &database.ImportRun{
		ID:        uuid.NewString(),
		FileName:  name,
		StoreKey:  info.StoreKey,
		Kind:      database.ImportKind(parsed.Kind),
		SheetDate: info.Date,
		Signature: signature,
		RowCount:  parsed.ValidRows,
	}
	recorded, err := im.store.RecordImportRun(ctx, run)
	if err != nil {
		return im.fail(res, err)
	}
	if !recorded {
		// A concurrent import of identical content won the race. The upserts
		// above wrote the same rows, so the data is still consistent.
		filesImported.WithLabelValues(string(StatusSkipped)).Inc()
		res.Status = StatusSkipped
		return res
	}

	im.archive(ctx, info, signature, name, content)

	rowsImported.WithLabelValues(string(parsed.Kind)).Add(float64(parsed.ValidRows))
	filesImported.WithLabelValues(string(StatusImported)).Inc()
	im.logger.Info().
		Str("file", name).
		Str("store", info.StoreKey).
		Str("kind", string(parsed.Kind)).
		Int("rows", parsed.ValidRows).
		Int("row_errors", len(parsed.Errors)).
		Str("run_id", run.ID).
		Msg("Sheet imported")

	res.Status = StatusImported
	res.Run = run
	return res
}

// ImportFiles imports files concurrently, at most Concurrency at a time.
// Results are returned in input order.
func (im *Importer) ImportFiles(ctx context.Context, paths []string) []Result {
	perFile := make([][]Result, len(paths))
	sem := semaphore.NewWeighted(int64(im.opts.Concurrency))
	var wg sync.WaitGroup

	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(paths); j++ {
				perFile[j] = []Result{im.fail(Result{File: filepath.Base(paths[j])}, err)}
			}
			break
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)
			perFile[i] = im.Import(ctx, path)
		}(i, path)
	}
	wg.Wait()

	var results []Result
	for _, r := range perFile {
		results = append(results, r...)
	}
	return results
}

// ImportDir imports every sheet file and .zip bundle in dir. Files whose
// names do not follow the sheet naming scheme are ignored.
func (im *Importer) ImportDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !bundle.IsBundle(e.Name()) {
			if _, err := sheet.ParseFileName(e.Name()); err != nil {
				im.logger.Debug().Str("file", e.Name()).Msg("Ignoring file with unrecognized name")
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return im.ImportFiles(ctx, paths), nil
}

func (im *Importer) fail(res Result, err error) Result {
	im.logger.Error().Err(err).Str("file", res.File).Msg("Sheet import failed")
	filesImported.WithLabelValues(string(StatusFailed)).Inc()
	res.Status = StatusFailed
	res.Err = err
	return res
}

// archive keeps the raw sheet. Failures are logged; the import itself
// has already been recorded.
func (im *Importer) archive(ctx context.Context, info types.FileInfo, signature, name string, content []byte) {
	if im.opts.Archive == nil {
		return
	}
	key := storage.SheetKey(info.StoreKey, info.Date, signature, name)
	if err := im.opts.Archive.Put(ctx, key, content); err != nil {
		im.logger.Warn().Err(err).Str("file", name).Str("key", key).Msg("Failed to archive sheet")
	}
}

// storeName turns a store key such as "mega-image" into "Mega Image".
func (im *Importer) storeName(key string) string {
	return im.titler.String(strings.ReplaceAll(key, "-", " "))
}

func priceRecords(rows []types.PriceRow) []database.PriceRecord {
	records := make([]database.PriceRecord, len(rows))
	for i, r := range rows {
		records[i] = database.PriceRecord{
			Product: database.ProductRecord{
				Key:             r.ProductKey,
				Name:            r.Name,
				Brand:           r.Brand,
				Category:        r.Category,
				PackageQuantity: r.PackageQuantity,
				PackageUnit:     r.PackageUnit,
			},
			Price:    r.Price,
			Currency: r.Currency,
		}
	}
	return records
}

func discountRecords(rows []types.DiscountRow) []database.DiscountRecord {
	records := make([]database.DiscountRecord, len(rows))
	for i, r := range rows {
		records[i] = database.DiscountRecord{
			Product: database.ProductRecord{
				Key:             r.ProductKey,
				Name:            r.Name,
				Brand:           r.Brand,
				Category:        r.Category,
				PackageQuantity: r.PackageQuantity,
				PackageUnit:     r.PackageUnit,
			},
			FromDate:   r.FromDate,
			ToDate:     r.ToDate,
			PercentOff: r.PercentOff,
		}
	}
	return records
}
