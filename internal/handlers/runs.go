package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/price-comparator/internal/database"
)

// ImportRunLister reads the import ledger.
type ImportRunLister interface {
	ListImportRuns(ctx context.Context, limit int) ([]database.ImportRun, error)
}

// ListRunsRequest represents query parameters for listing import runs
type ListRunsRequest struct {
	Limit int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100" jsonschema:"minimum=1,maximum=100"`
}

// ImportRun is one loaded sheet
type ImportRun struct {
	ID         string `json:"id" jsonschema:"required"`
	FileName   string `json:"fileName" jsonschema:"required"`
	StoreKey   string `json:"storeKey" jsonschema:"required"`
	Kind       string `json:"kind" jsonschema:"required,enum=prices,enum=discounts"`
	SheetDate  string `json:"sheetDate" jsonschema:"required"`
	Signature  string `json:"signature" jsonschema:"required"`
	RowCount   int    `json:"rowCount" jsonschema:"required"`
	ImportedAt string `json:"importedAt" jsonschema:"required"`
}

// ListRunsResponse represents the response for listing import runs
type ListRunsResponse struct {
	Runs  []ImportRun `json:"runs" jsonschema:"required"`
	Total int         `json:"total" jsonschema:"required"`
}

// ListRuns returns the most recently imported sheets
// @Summary List import runs
// @Description Returns the most recently imported price and discount sheets, newest first
// @Tags imports
// @Produce json
// @Param limit query int false "Number of items to return" default(20) minimum(1) maximum(100)
// @Success 200 {object} ListRunsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /imports/runs [get]
func ListRuns(c *gin.Context) {
	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}
	if importRuns == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import ledger not configured"})
		return
	}

	runs, err := importRuns.ListImportRuns(c.Request.Context(), req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := ListRunsResponse{Runs: make([]ImportRun, len(runs)), Total: len(runs)}
	for i, r := range runs {
		resp.Runs[i] = ImportRun{
			ID:         r.ID,
			FileName:   r.FileName,
			StoreKey:   r.StoreKey,
			Kind:       string(r.Kind),
			SheetDate:  formatDay(r.SheetDate),
			Signature:  r.Signature,
			RowCount:   r.RowCount,
			ImportedAt: r.ImportedAt.UTC().Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, resp)
}
