package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/export"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/handler"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/service"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/sniffer"
)

const (
	formatXLSX = "xlsx"
	formatCSV  = "csv"
)

type convertOptions struct {
	outputDir string
	format    string
	workers   int
}

func (c *cli) convertCmd() *cobra.Command {
	opts := convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <pdf>...",
		Short: "Convert invoice PDFs to xlsx or csv",
		Long: `Convert one or more invoice PDFs. Each input produces
<name>_convertida.xlsx, or <name>_convertida_items.csv and
<name>_convertida_delayed.csv with --format csv.

Outputs are written next to each input unless --output is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatXLSX && opts.format != formatCSV {
				return fmt.Errorf("unknown format %q (want xlsx or csv)", opts.format)
			}
			if opts.workers < 1 {
				return fmt.Errorf("workers must be at least 1")
			}
			if opts.outputDir != "" {
				if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			svc, err := c.service()
			if err != nil {
				return err
			}
			return c.convertAll(cmd.Context(), svc, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory")
	cmd.Flags().StringVar(&opts.format, "format", formatXLSX, "Output format (xlsx, csv)")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "Documents converted in parallel")

	return cmd
}

// conversionJob is one input and the outputs it will write.
type conversionJob struct {
	input   string
	outputs []string
}

// planJobs derives every output path up front and rejects inputs that would
// write the same file. Paths are compared case-insensitively since the
// common desktop file systems are.
func planJobs(paths []string, opts convertOptions) ([]conversionJob, error) {
	jobs := make([]conversionJob, 0, len(paths))
	owner := make(map[string]string, len(paths))

	for _, path := range paths {
		dir := opts.outputDir
		if dir == "" {
			dir = filepath.Dir(path)
		}
		name := handler.OutputFilename(filepath.Base(path))

		job := conversionJob{input: path}
		if opts.format == formatXLSX {
			job.outputs = []string{filepath.Join(dir, name)}
		} else {
			base := strings.TrimSuffix(name, ".xlsx")
			job.outputs = []string{
				filepath.Join(dir, base+"_items.csv"),
				filepath.Join(dir, base+"_delayed.csv"),
			}
		}

		for _, out := range job.outputs {
			key := strings.ToLower(filepath.Clean(out))
			if prev, ok := owner[key]; ok {
				return nil, fmt.Errorf("%s and %s would both write %s", prev, path, out)
			}
			owner[key] = path
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// convertAll converts every path, stopping at the first failure.
func (c *cli) convertAll(ctx context.Context, svc *service.ConvertService, paths []string, opts convertOptions) error {
	jobs, err := planJobs(paths, opts)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	var mu sync.Mutex
	for _, job := range jobs {
		g.Go(func() error {
			sum, err := convertFile(ctx, svc, job)
			if err != nil {
				return fmt.Errorf("%s: %w", job.input, err)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, out := range job.outputs {
				fmt.Fprintf(c.stdout, "%s -> %s (%d items, %d delayed)\n", job.input, out, sum.Items, sum.Delayed)
			}
			return nil
		})
	}

	return g.Wait()
}

func convertFile(ctx context.Context, svc *service.ConvertService, job conversionJob) (service.Summary, error) {
	up, err := readUpload(job.input)
	if err != nil {
		return service.Summary{}, err
	}

	res, err := svc.Parse(ctx, up)
	if err != nil {
		return service.Summary{}, err
	}
	sum := svc.Summarize(res)

	if len(job.outputs) == 1 {
		err := writeFile(job.outputs[0], func(f *os.File) error { return export.WriteWorkbook(f, res) })
		return sum, err
	}

	if err := writeFile(job.outputs[0], func(f *os.File) error { return export.WriteCSV(f, export.ItemRows(res.Items)) }); err != nil {
		return sum, err
	}
	if err := writeFile(job.outputs[1], func(f *os.File) error { return export.WriteCSV(f, export.DelayedRows(res.Delayed)) }); err != nil {
		return sum, err
	}
	return sum, nil
}

// readUpload loads a local file and checks it is a PDF by content.
func readUpload(path string) (service.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.Upload{}, fmt.Errorf("failed to read file: %w", err)
	}
	if err := sniffer.CheckPDF(data, ""); err != nil {
		return service.Upload{}, err
	}

	return service.Upload{
		Filename:    filepath.Base(path),
		ContentType: sniffer.MIMEPDF,
		Data:        data,
	}, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
