package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"chargedash/internal/clients"
	"chargedash/internal/invoice"
	"chargedash/internal/models"
	"chargedash/internal/records"
	"chargedash/internal/view"
)

// RecordsHandlers drives the records view controller over HTTP.
type RecordsHandlers struct {
	ctrl   *view.Controller
	pdf    *invoice.PDFGenerator
	logger *zap.Logger
	clock  func() time.Time
}

// NewRecordsHandlers returns handler struct.
func NewRecordsHandlers(ctrl *view.Controller, pdf *invoice.PDFGenerator, logger *zap.Logger) *RecordsHandlers {
	return &RecordsHandlers{ctrl: ctrl, pdf: pdf, logger: logger, clock: time.Now}
}

type viewResponse struct {
	State      string                  `json:"state"`
	Loading    bool                    `json:"loading"`
	Records    []models.ChargingRecord `json:"records"`
	Total      int                     `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	Search     string                  `json:"search"`
	Range      string                  `json:"range"`
	Selected   *models.ChargingRecord  `json:"selected,omitempty"`
	DetailOpen bool                    `json:"detail_open"`
	Notice     string                  `json:"notice,omitempty"`
}

func snapshotResponse(snap view.Snapshot) viewResponse {
	return viewResponse{
		State:      snap.State.String(),
		Loading:    snap.Loading,
		Records:    snap.Page.Records,
		Total:      snap.Page.Total,
		Page:       snap.PageNum,
		PageSize:   snap.PageSize,
		Search:     snap.Search,
		Range:      string(snap.TimeRange),
		Selected:   snap.Selected,
		DetailOpen: snap.DetailOpen,
	}
}

// View handles GET /api/records: applies filter inputs from the query, loads
// the record set on first use, resolves an optional record_id deep link and
// returns the visible page.
func (h *RecordsHandlers) View(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		if size != h.ctrl.Snapshot().PageSize {
			h.ctrl.SetPageSize(size)
		}
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		h.ctrl.SetPage(page)
	}
	if q.Has("search") {
		h.ctrl.SetSearch(q.Get("search"))
	}
	if q.Has("range") {
		h.ctrl.SetTimeRange(records.ParseTimeRange(q.Get("range")))
	}

	if h.ctrl.Snapshot().State == view.StateIdle {
		if err := h.ctrl.Load(r.Context()); err != nil && errors.Is(err, clients.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "session expired",
				"redirect": "/login",
			})
			return
		}
	}

	var notice string
	if raw := q.Get("record_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid record_id")
			return
		}
		if err := h.ctrl.OpenByID(r.Context(), id); err != nil {
			notice = "获取充电记录详情失败"
		}
	}

	resp := snapshotResponse(h.ctrl.Snapshot())
	resp.Notice = notice
	writeJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /api/records/refresh.
func (h *RecordsHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Load(r.Context()); err != nil {
		h.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse(h.ctrl.Snapshot()))
}

// Detail handles GET /api/records/{id}: opens the detail view and returns the
// record with its rendered document.
func (h *RecordsHandlers) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	if err := h.ctrl.OpenByID(r.Context(), id); err != nil {
		h.writeFetchError(w, err)
		return
	}

	snap := h.ctrl.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record":   snap.Selected,
		"document": invoice.Render(*snap.Selected),
	})
}

// CloseDetail handles POST /api/records/detail/close.
func (h *RecordsHandlers) CloseDetail(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Close()
	writeJSON(w, http.StatusNoContent, nil)
}

// Print handles POST /api/records/print: renders the selected record into
// the print surface.
func (h *RecordsHandlers) Print(w http.ResponseWriter, r *http.Request) {
	err := h.ctrl.Print()
	switch {
	case err == nil:
		writeJSON(w, http.StatusNoContent, nil)
	case errors.Is(err, view.ErrNoSelection):
		writeError(w, http.StatusBadRequest, "no record selected")
	case errors.Is(err, view.ErrPrintSurfaceBlocked):
		writeJSON(w, http.StatusConflict, map[string]string{"warning": "请允许弹出窗口以打印详单"})
	default:
		h.logger.Error("print failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to print record")
	}
}

// Printable handles GET /api/records/{id}/print with the standalone HTML page.
func (h *RecordsHandlers) Printable(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := h.ctrl.Resolve(r.Context(), id)
	if err != nil {
		h.writeFetchError(w, err)
		return
	}
	markup, err := invoice.RenderPrintable(*rec, h.clock())
	if err != nil {
		h.logger.Error("printable render failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render record")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}

// InvoicePDF handles GET /api/records/{id}/invoice.pdf.
func (h *RecordsHandlers) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := h.ctrl.Resolve(r.Context(), id)
	if err != nil {
		h.writeFetchError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", rec.RecordNumber))
	if err := h.pdf.Write(*rec, h.clock(), w); err != nil {
		// Headers are already out; only log.
		h.logger.Error("pdf stream failed", zap.Int64("record_id", id), zap.Error(err))
	}
}

func (h *RecordsHandlers) writeFetchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clients.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "session expired",
			"redirect": "/login",
		})
	case errors.Is(err, clients.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	default:
		h.logger.Error("records fetch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "charging backend unavailable")
	}
}

func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return 0, false
	}
	return id, true
}
