// Schema Generator
//
// Generates JSON Schema files from the HTTP API types so clients in other
// languages can validate requests and responses. The Go types are the
// source of truth.
//
// Usage:
//
//	go run ./cmd/schema-gen -out ./schemas
//
// Output:
//
//	<out>/basket.json
//	<out>/products.json
//	<out>/discounts.json
//	<out>/alerts.json
//	<out>/imports.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kosarica/price-comparator/internal/handlers"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

func schemaGroups() []SchemaGroup {
	return []SchemaGroup{
		{
			Name: "basket",
			Types: []any{
				handlers.BasketRequest{},
				handlers.BasketLine{},
				handlers.StoreBasket{},
				handlers.BasketResponse{},
			},
			Output: "basket.json",
		},
		{
			Name: "products",
			Types: []any{
				handlers.HistoryQuery{},
				handlers.DateQuery{},
				handlers.Product{},
				handlers.PriceInterval{},
				handlers.HistoryResponse{},
				handlers.Substitute{},
			},
			Output: "products.json",
		},
		{
			Name: "discounts",
			Types: []any{
				handlers.BestDiscountsQuery{},
				handlers.DiscountOffer{},
				handlers.NewDiscount{},
			},
			Output: "discounts.json",
		},
		{
			Name: "alerts",
			Types: []any{
				handlers.CreateAlertRequest{},
				handlers.BestQuote{},
				handlers.AlertResponse{},
			},
			Output: "alerts.json",
		},
		{
			Name: "imports",
			Types: []any{
				handlers.ListRunsRequest{},
				handlers.ImportRun{},
				handlers.ListRunsResponse{},
				handlers.CacheStatus{},
				handlers.ErrorResponse{},
			},
			Output: "imports.json",
		},
	}
}

func main() {
	outputDir := flag.String("out", "schemas", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, group := range schemaGroups() {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(*outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

// generateGroupSchema creates a combined schema with all types in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{}

	definitions := make(map[string]any)
	for _, t := range group.Types {
		schema := reflector.Reflect(t)
		for name, def := range schema.Definitions {
			definitions[name] = def
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://kosarica.ro/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", cases.Title(language.English).String(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s API types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

// writeSchema writes a schema to a JSON file
func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
