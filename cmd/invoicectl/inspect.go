package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/parser"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/service"
)

type inspectOutput struct {
	File    string                      `json:"file"`
	Items   []parser.InvoiceItem        `json:"items"`
	Delayed []parser.DelayedOrderRecord `json:"delayed"`
	Summary service.Summary             `json:"summary"`
}

func (c *cli) inspectCmd() *cobra.Command {
	var (
		asJSON bool
		match  string
	)

	cmd := &cobra.Command{
		Use:   "inspect <pdf>",
		Short: "Print the records found in an invoice PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}

			up, err := readUpload(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			res, err := svc.Parse(cmd.Context(), up)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := inspectOutput{
				File:    up.Filename,
				Items:   res.Items,
				Delayed: res.Delayed,
				Summary: svc.Summarize(res),
			}
			if match != "" {
				out.Items = matchItems(res.Items, match)
				out.Delayed = matchDelayed(res.Delayed, match)
			}

			if asJSON {
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(out)
			}
			return c.printInspect(out)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	cmd.Flags().StringVar(&match, "match", "", "Only show records whose description or article number fuzzy-matches")

	return cmd
}

func (c *cli) printInspect(out inspectOutput) error {
	fmt.Fprintf(c.stdout, "File: %s\n", out.File)
	fmt.Fprintf(c.stdout, "Items: %d  Delayed: %d  Unresolved orders: %d  Net total: %s\n\n",
		out.Summary.Items, out.Summary.Delayed, out.Summary.UnresolvedOrders, out.Summary.NetTotal.Display())

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tARTICLE\tQTY\tUNIT\tNET PRICE\tORDER\tDESCRIPTION")
	for _, item := range out.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Position,
			item.ArticleNumber,
			optionalInt(item.Quantity),
			item.Unit,
			optionalPrice(item.NetPrice.Valid, item.NetPrice.Decimal.StringFixed(2)),
			optionalString(item.OrderNumber),
			item.Description,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(out.Delayed) == 0 {
		return nil
	}

	fmt.Fprintln(c.stdout)
	tw = tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tARTICLE\tOPEN QTY\tDESCRIPTION")
	for _, rec := range out.Delayed {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Position, rec.ArticleNumber, optionalInt(rec.OpenQuantity), rec.Description)
	}
	return tw.Flush()
}

// matches reports whether term fuzzy-matches the description or article
// number, ignoring case and accents.
func matches(term, description, article string) bool {
	return fuzzy.MatchNormalizedFold(term, description) || fuzzy.MatchNormalizedFold(term, article)
}

func matchItems(items []parser.InvoiceItem, term string) []parser.InvoiceItem {
	out := make([]parser.InvoiceItem, 0, len(items))
	for _, item := range items {
		if matches(term, item.Description, item.ArticleNumber) {
			out = append(out, item)
		}
	}
	return out
}

func matchDelayed(delayed []parser.DelayedOrderRecord, term string) []parser.DelayedOrderRecord {
	out := make([]parser.DelayedOrderRecord, 0, len(delayed))
	for _, rec := range delayed {
		if matches(term, rec.Description, rec.ArticleNumber) {
			out = append(out, rec)
		}
	}
	return out
}

func optionalInt(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}

func optionalString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func optionalPrice(valid bool, text string) string {
	if !valid {
		return "-"
	}
	return text
}
