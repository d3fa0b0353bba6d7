// Command invoicectl converts vendor invoice PDFs from the command line.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/parser"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/service"
	"github.com/FACorreiaa/invoice-converter/pkg/config"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cli struct {
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "invoicectl",
		Short: "Convert vendor invoice PDFs to spreadsheets",
		Long: `invoicectl reads the text layer of vendor invoice PDFs and extracts
the invoiced items and the delayed (backordered) positions.

Example:
  invoicectl convert factura.pdf
  invoicectl convert *.pdf --output out/ --format csv --workers 4
  invoicectl inspect factura.pdf --json`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log every document at debug level")

	rootCmd.AddCommand(c.convertCmd())
	rootCmd.AddCommand(c.inspectCmd())
	rootCmd.AddCommand(c.archiveCmd())

	return rootCmd
}

func (c *cli) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
}

// service builds a converter from the same environment the API server reads.
func (c *cli) service() (*service.ConvertService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return service.NewConvertService(parser.NewPDFParser(), c.logger()).
		WithCurrency(cfg.Parser.Currency).
		WithClassifierOptions(parser.WithPendingOrderExpiry(cfg.Parser.PendingOrderMaxLines)), nil
}
