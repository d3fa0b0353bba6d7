// Package handler exposes invoice conversion over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/export"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/parser"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/service"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/sniffer"
)

const (
	formField = "file"

	// Multipart parts beyond this are spooled to disk by net/http.
	multipartMemory = 8 << 20

	msgInvalidPDF  = "Sube un PDF válido."
	msgMissingFile = "Falta el archivo (campo \"file\")."
	msgTooLarge    = "El archivo excede el tamaño máximo permitido."
	msgUnreadable  = "No se pudo leer el texto del PDF."
	msgInternal    = "Error interno al convertir la factura."
)

var errFileTooLarge = errors.New("upload exceeds size limit")

// InvoiceHandler serves the upload form and the conversion endpoints.
type InvoiceHandler struct {
	svc            *service.ConvertService
	maxUploadBytes int64
	logger         *slog.Logger
	now            func() time.Time
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(svc *service.ConvertService, maxUploadBytes int64, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		now:            time.Now,
	}
}

// Attach registers the routes on r.
func (h *InvoiceHandler) Attach(r chi.Router) {
	r.Get("/", h.handleForm)
	r.Get("/health", h.handleHealth)

	r.Post("/convert", h.handleConvert)
	r.Post("/parse", h.handleParse)
}

// ParseResponse is the body of POST /parse.
type ParseResponse struct {
	Items   []parser.InvoiceItem        `json:"items"`
	Delayed []parser.DelayedOrderRecord `json:"delayed"`
	Summary service.Summary             `json:"summary"`
}

func (h *InvoiceHandler) handleForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, uploadForm)
}

func (h *InvoiceHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"ts":     h.now().UTC().Format(time.RFC3339),
	})
}

func (h *InvoiceHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	conv, err := h.svc.Convert(r.Context(), up)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, OutputFilename(up.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(conv.Workbook)))
	w.WriteHeader(http.StatusOK)
	w.Write(conv.Workbook)
}

func (h *InvoiceHandler) handleParse(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Parse(r.Context(), up)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ParseResponse{
		Items:   res.Items,
		Delayed: res.Delayed,
		Summary: h.svc.Summarize(res),
	})
}

// readUpload reads and validates the multipart file. On failure it writes
// the response and returns false.
func (h *InvoiceHandler) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, bool) {
	up, err := h.readFile(w, r)
	if err == nil {
		err = sniffer.CheckPDF(up.Data, up.ContentType)
	}

	switch {
	case err == nil:
		return up, true
	case errors.Is(err, errFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		writeError(w, http.StatusBadRequest, msgMissingFile)
	default:
		h.logger.Info("rejected upload",
			slog.String("file", up.Filename),
			slog.String("content_type", up.ContentType),
			slog.Any("error", err),
		)
		writeError(w, http.StatusBadRequest, msgInvalidPDF)
	}
	return up, false
}

func (h *InvoiceHandler) readFile(w http.ResponseWriter, r *http.Request) (service.Upload, error) {
	if r.ContentLength > h.maxUploadBytes {
		return service.Upload{}, errFileTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return service.Upload{}, errFileTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return service.Upload{}, err
		}
		return service.Upload{}, fmt.Errorf("failed to parse form: %w", err)
	}

	file, header, err := r.FormFile(formField)
	if err != nil {
		return service.Upload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}

	return service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *InvoiceHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, parser.ErrExtraction):
		writeError(w, http.StatusUnprocessableEntity, msgUnreadable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("conversion cancelled", slog.String("path", r.URL.Path), slog.Any("error", err))
		writeError(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
	default:
		h.logger.Error("failed to convert invoice", slog.String("path", r.URL.Path), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	io.WriteString(w, msg)
}
