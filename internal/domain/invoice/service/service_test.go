package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/export"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/invoicetest"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/parser"
	"github.com/FACorreiaa/invoice-converter/pkg/observability"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	return f.pages, f.err
}

type failingStorage struct {
	storage.Storage
}

func (failingStorage) Save(ctx context.Context, filename, contentType, fingerprint string, r io.Reader) (*storage.FileInfo, error) {
	return nil, errors.New("disk full")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func upload(data []byte) Upload {
	return Upload{Filename: "factura.pdf", ContentType: "application/pdf", Data: data}
}

func TestConvertService_Parse(t *testing.T) {
	svc := NewConvertService(&fakeExtractor{pages: []string{
		"FACTURA\n010 ABC widget 2 PZ 10,000.00\n",
		"Pedido 98765\nPedido retrasado\n123456 XYZ9 5 Some description\nPosiciones en total",
	}}, testLogger())

	res, err := svc.Parse(context.Background(), upload([]byte("%PDF-1.4")))
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	require.NotNil(t, res.Items[0].OrderNumber)
	assert.Equal(t, "98765", *res.Items[0].OrderNumber)
	require.Len(t, res.Delayed, 1)
	assert.Equal(t, "123456", res.Delayed[0].Position)
}

func TestConvertService_ExtractionErrorPropagates(t *testing.T) {
	sentinel := errors.New("broken xref")
	m := observability.NewMetrics()
	svc := NewConvertService(&fakeExtractor{err: sentinel}, testLogger()).WithMetrics(m)

	_, err := svc.Parse(context.Background(), upload([]byte("%PDF-1.4")))
	assert.ErrorIs(t, err, sentinel)

	_, err = svc.Convert(context.Background(), upload([]byte("%PDF-1.4")))
	assert.ErrorIs(t, err, sentinel)

	t.Run("real extractor", func(t *testing.T) {
		svc := NewConvertService(parser.NewPDFParser(), testLogger())
		_, err := svc.Convert(context.Background(), upload([]byte("not a pdf")))
		assert.ErrorIs(t, err, parser.ErrExtraction)
	})
}

func TestConvertService_Convert(t *testing.T) {
	doc := invoicetest.NewGeneratorWithSeed(5).Document(10, 2)
	svc := NewConvertService(parser.NewPDFParser(), testLogger())

	data := invoicetest.BuildPDF(doc.PageLines(15))
	conv, err := svc.Convert(context.Background(), upload(data))
	require.NoError(t, err)

	assert.Len(t, conv.Result.Items, len(doc.Items))
	assert.Len(t, conv.Fingerprint, 64)

	f, err := excelize.OpenReader(bytes.NewReader(conv.Workbook))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.ItemsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, len(doc.Items)+1)
}

func TestConvertService_Archive(t *testing.T) {
	t.Run("stores the source document", func(t *testing.T) {
		archive, err := storage.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		svc := NewConvertService(&fakeExtractor{}, testLogger()).WithArchive(archive)
		_, err = svc.Parse(context.Background(), upload([]byte("%PDF-1.4 body")))
		require.NoError(t, err)

		files, err := archive.List(context.Background())
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "factura.pdf", files[0].Name)
		assert.Len(t, files[0].Fingerprint, 64)
	})

	t.Run("failures are not fatal", func(t *testing.T) {
		svc := NewConvertService(&fakeExtractor{pages: []string{"010 ABC widget 2 PZ 1.00"}}, testLogger()).
			WithArchive(failingStorage{})

		res, err := svc.Parse(context.Background(), upload([]byte("%PDF-1.4")))
		require.NoError(t, err)
		assert.Len(t, res.Items, 1)
	})
}

func TestConvertService_ClassifierOptions(t *testing.T) {
	pages := []string{"Pedido 98765\nFACTURA\nHoja 1 de 2\n010 ABC widget 2 PZ 1.00"}

	res, err := NewConvertService(&fakeExtractor{pages: pages}, testLogger()).
		WithClassifierOptions(parser.WithPendingOrderExpiry(1)).
		Parse(context.Background(), upload(nil))
	require.NoError(t, err)
	assert.Nil(t, res.Items[0].OrderNumber)
}

func TestConvertService_Summarize(t *testing.T) {
	svc := NewConvertService(&fakeExtractor{}, testLogger())
	res := parser.Classify([]string{
		"010 A1 first 1 PZ 1,000.50",
		"Pedido 12345",
		"020 B2 second 1 PZ 99.50",
		"Pedido retrasado",
		"123456 XYZ9 5 Some description",
	})

	summary := svc.Summarize(res)
	assert.Equal(t, 2, summary.Items)
	assert.Equal(t, 1, summary.Delayed)
	assert.Equal(t, 1, summary.UnresolvedOrders)
	assert.Equal(t, int64(110000), summary.NetTotal.Amount())
	assert.Equal(t, "MXN", summary.NetTotal.Currency())

	summary = svc.WithCurrency("USD").Summarize(res)
	assert.Equal(t, "USD", summary.NetTotal.Currency())
}

func TestConvertService_ConcurrentDocuments(t *testing.T) {
	svc := NewConvertService(parser.NewPDFParser(), testLogger())

	docs := make([]invoicetest.Document, 8)
	for i := range docs {
		docs[i] = invoicetest.NewGeneratorWithSeed(int64(100 + i)).Document(5+i, i%3)
	}

	results := make([]*parser.Result, len(docs))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		g.Go(func() error {
			res, err := svc.Parse(ctx, Upload{
				Filename: uuid.NewString() + ".pdf",
				Data:     invoicetest.BuildPDF(doc.PageLines(30)),
			})
			results[i] = res
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i, doc := range docs {
		assert.Len(t, results[i].Items, len(doc.Items))
		assert.Len(t, results[i].Delayed, len(doc.Delayed))
	}
}
