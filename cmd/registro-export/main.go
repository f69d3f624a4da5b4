// registro-export renders the saved document of a bin to a local PDF,
// XLSX, or CSV file, using the same renderers as the HTTP download
// endpoints.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"registro/internal/cli"
	"registro/internal/core"
	"registro/internal/export"
	"registro/internal/log"
)

var (
	binID   string
	outPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "registro-export",
		Short: "Export a saved ledger document to PDF, XLSX, or CSV",
		Long: "registro-export reads the saved document for a bin from the " +
			"configured store and writes it to a local file. The store backend " +
			"and credentials come from the environment, same as the server.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&binID, "bin", "b", "", "bin id to export (required)")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "output file (default: derived from organization and date)")
	_ = rootCmd.MarkPersistentFlagRequired("bin")

	rootCmd.AddCommand(
		newFormatCommand("pdf", "Write the document as a PDF report", export.WritePDF),
		newFormatCommand("xlsx", "Write the document as an Excel workbook", export.WriteXLSX),
		newFormatCommand("csv", "Write the document as UTF-8 CSV", export.WriteCSV),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newFormatCommand(format, short string, render func(io.Writer, export.Input) error) *cobra.Command {
	return &cobra.Command{
		Use:   format,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), format, render)
		},
	}
}

func runExport(ctx context.Context, format string, render func(io.Writer, export.Input) error) error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentExport)

	cfg := cli.LoadAndValidateConfig(logger)

	result := cli.CreateStore(logger, cfg)
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	raw, err := result.Store.Load(loadCtx, binID)
	if err != nil {
		return fmt.Errorf("load bin %s: %w", binID, err)
	}
	if raw == nil {
		return fmt.Errorf("bin %s has no saved document", binID)
	}

	ledger := core.FromDocument(raw)
	entries := ledger.Entries()

	org := organizationFrom(raw)
	if org == "" {
		org = cfg.Organization
	}
	now := time.Now()

	in := export.Input{
		Organization: org,
		Entries:      entries,
		Totals:       core.ComputeTotals(entries),
		GeneratedAt:  now,
	}

	path := outPath
	if path == "" {
		path = export.Filename(org, format, now)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f, in); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info("Exported document",
		log.FieldBinID, binID,
		log.FieldFormat, format,
		"entries", len(entries),
		"file", path)
	return nil
}

// organizationFrom reads the organization out of the raw document, unwrapping
// the store envelope when present.
func organizationFrom(raw []byte) string {
	var doc struct {
		Record *struct {
			Meta core.DocumentMeta `json:"meta"`
		} `json:"record"`
		Meta core.DocumentMeta `json:"meta"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	if doc.Record != nil && doc.Record.Meta.Organization != "" {
		return doc.Record.Meta.Organization
	}
	return doc.Meta.Organization
}
