package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/invoice-converter/pkg/config"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

func (c *cli) archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse the uploads archived by the API server",
		Long: `Browse the source PDFs the API server archived (ARCHIVE_PATH).

Example:
  invoicectl archive list
  invoicectl archive get 6f1c2d3e-... --output factura.pdf`,
	}

	cmd.AddCommand(c.archiveListCmd())
	cmd.AddCommand(c.archiveGetCmd())

	return cmd
}

func (c *cli) archive() (storage.Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return storage.NewLocalStorage(cfg.Storage.ArchivePath)
}

func (c *cli) archiveListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived uploads, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := c.archive()
			if err != nil {
				return err
			}

			files, err := archive.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(files)
			}

			tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tARCHIVED\tSIZE\tNAME")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.ID, f.CreatedAt.Format(time.RFC3339), f.Size, f.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")

	return cmd
}

func (c *cli) archiveGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Copy an archived upload out of the archive",
		Long: `Copy an archived upload to --output, or to its original file name
in the current directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid archive id %q: %w", args[0], err)
			}

			archive, err := c.archive()
			if err != nil {
				return err
			}

			r, info, err := archive.Open(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer r.Close()

			if output == "" {
				output = filepath.Base(strings.ReplaceAll(info.Name, "\\", "/"))
				if output == "." || output == "/" {
					output = info.ID.String() + ".pdf"
				}
			}

			if err := writeFile(output, func(f *os.File) error {
				_, err := io.Copy(f, r)
				return err
			}); err != nil {
				return err
			}

			fmt.Fprintf(c.stdout, "%s -> %s (%d bytes)\n", info.ID, output, info.Size)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file")

	return cmd
}
