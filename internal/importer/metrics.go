package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// filesImported counts sheet files by outcome.
	filesImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecomp_import_files_total",
		Help: "Total number of sheet files processed by outcome",
	}, []string{"status"}) // status: imported, skipped, failed

	// rowsImported counts persisted rows by sheet kind.
	rowsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecomp_import_rows_total",
		Help: "Total number of sheet rows persisted by kind",
	}, []string{"kind"})

	// rowErrors counts rows rejected by the parsers.
	rowErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricecomp_import_row_errors_total",
		Help: "Total number of sheet rows rejected during parsing",
	})
)
