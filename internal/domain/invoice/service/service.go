// Package service orchestrates invoice conversion: text extraction, line
// classification, workbook export and the optional upload archive.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/export"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/normalizer"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/parser"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/sniffer"
	"github.com/FACorreiaa/invoice-converter/pkg/money"
	"github.com/FACorreiaa/invoice-converter/pkg/observability"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

// TextExtractor returns the text of each page of a document, in page order.
type TextExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// Upload is a source document with the metadata it arrived with.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Conversion is a parsed document and its rendered workbook.
type Conversion struct {
	Result      *parser.Result
	Workbook    []byte
	Fingerprint string
}

// Summary describes a parsed document for API responses and the CLI.
type Summary struct {
	Items            int          `json:"items"`
	Delayed          int          `json:"delayed"`
	UnresolvedOrders int          `json:"unresolved_orders"`
	NetTotal         *money.Money `json:"net_total"`
	Stats            parser.Stats `json:"stats"`
}

// ConvertService turns invoice PDFs into item and backorder datasets. It holds
// no per-document state and is safe for concurrent use.
type ConvertService struct {
	extractor   TextExtractor
	archive     storage.Storage        // Optional: nil if archiving is disabled
	metrics     *observability.Metrics // Optional
	classifyOps []parser.Option
	currency    string
	logger      *slog.Logger
}

// NewConvertService creates a new conversion service
func NewConvertService(extractor TextExtractor, logger *slog.Logger) *ConvertService {
	return &ConvertService{
		extractor: extractor,
		currency:  money.MXN,
		logger:    logger,
	}
}

// WithArchive stores every source document before it is parsed
func (s *ConvertService) WithArchive(archive storage.Storage) *ConvertService {
	s.archive = archive
	return s
}

// WithMetrics records document outcomes
func (s *ConvertService) WithMetrics(m *observability.Metrics) *ConvertService {
	s.metrics = m
	return s
}

// WithClassifierOptions configures the classifier built for each document
func (s *ConvertService) WithClassifierOptions(opts ...parser.Option) *ConvertService {
	s.classifyOps = append(s.classifyOps, opts...)
	return s
}

// WithCurrency sets the currency used for summary totals
func (s *ConvertService) WithCurrency(code string) *ConvertService {
	s.currency = code
	return s
}

// Parse extracts and classifies the lines of one document. Extraction errors
// are returned as is; malformed content never fails.
func (s *ConvertService) Parse(ctx context.Context, up Upload) (*parser.Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "invoice.Parse")
	defer span.End()

	start := time.Now()
	fingerprint := sniffer.Fingerprint(up.Data)
	logger := s.logger.With(
		slog.String("file", up.Filename),
		slog.String("fingerprint", fingerprint[:12]),
	)
	span.SetAttributes(
		attribute.String("invoice.fingerprint", fingerprint),
		attribute.Int("invoice.bytes", len(up.Data)),
	)

	s.archiveUpload(ctx, up, fingerprint, logger)

	pages, err := s.extractor.ExtractPages(ctx, up.Data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		s.metrics.ObserveDocument(observability.OutcomeExtractionError, 0, 0, 0, time.Since(start))
		logger.Warn("failed to extract document text", slog.Any("error", err))
		return nil, err
	}

	res := parser.Classify(normalizer.Lines(pages), s.classifyOps...)
	unresolved := res.UnresolvedOrders()

	s.metrics.ObserveDocument(observability.OutcomeOK, len(res.Items), len(res.Delayed), unresolved, time.Since(start))
	span.SetAttributes(
		attribute.Int("invoice.pages", len(pages)),
		attribute.Int("invoice.items", len(res.Items)),
		attribute.Int("invoice.delayed", len(res.Delayed)),
	)
	logger.Info("document parsed",
		slog.Int("pages", len(pages)),
		slog.Int("lines", res.Stats.Lines),
		slog.Int("items", len(res.Items)),
		slog.Int("delayed", len(res.Delayed)),
		slog.Int("unresolved_orders", unresolved),
		slog.Int("unrecognized", res.Stats.Unrecognized),
		slog.Duration("elapsed", time.Since(start)),
	)

	return res, nil
}

// Convert parses a document and renders the workbook.
func (s *ConvertService) Convert(ctx context.Context, up Upload) (*Conversion, error) {
	res, err := s.Parse(ctx, up)
	if err != nil {
		return nil, err
	}

	workbook, err := export.WorkbookBytes(res)
	if err != nil {
		return nil, fmt.Errorf("failed to export workbook: %w", err)
	}

	return &Conversion{
		Result:      res,
		Workbook:    workbook,
		Fingerprint: sniffer.Fingerprint(up.Data),
	}, nil
}

// Summarize totals a parsed document in the configured currency.
func (s *ConvertService) Summarize(res *parser.Result) Summary {
	return Summary{
		Items:            len(res.Items),
		Delayed:          len(res.Delayed),
		UnresolvedOrders: res.UnresolvedOrders(),
		NetTotal:         money.NewFromDecimal(res.NetTotal(), s.currency),
		Stats:            res.Stats,
	}
}

// archiveUpload stores the source document. Failures are logged and ignored.
func (s *ConvertService) archiveUpload(ctx context.Context, up Upload, fingerprint string, logger *slog.Logger) {
	if s.archive == nil {
		return
	}

	info, err := s.archive.Save(ctx, up.Filename, up.ContentType, fingerprint, bytes.NewReader(up.Data))
	if err != nil {
		logger.Warn("failed to archive upload", slog.Any("error", err))
		return
	}

	s.metrics.ObserveArchived()
	logger.Debug("upload archived", slog.String("archive_id", info.ID.String()))
}
