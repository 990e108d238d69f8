// Package handler exposes the interaction surface over HTTP: topology
// loading, pointer gestures, panel state, position persistence, and view
// export. Connected clients receive the resulting state changes over SSE.
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"topoview/internal/canvas"
	"topoview/internal/domain"
	"topoview/internal/export"
	"topoview/internal/panel"
	"topoview/internal/repository"
)

// ViewHandler handles canvas and panel API requests.
type ViewHandler struct {
	canvas         *canvas.Canvas
	panel          *panel.Panel
	exporter       *export.Service
	repo           repository.Repository
	defaultNetwork string
	log            zerolog.Logger
}

// NewViewHandler creates the API handler.
func NewViewHandler(c *canvas.Canvas, p *panel.Panel, e *export.Service, repo repository.Repository, defaultNetwork string, log zerolog.Logger) *ViewHandler {
	return &ViewHandler{
		canvas:         c,
		panel:          p,
		exporter:       e,
		repo:           repo,
		defaultNetwork: defaultNetwork,
		log:            log.With().Str("component", "handler").Logger(),
	}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetTopology returns the current graph. When a snapshot query parameter is
// present the topology is (re)loaded from the engine first.
func (h *ViewHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	snapshot := r.URL.Query().Get("snapshot")
	network := r.URL.Query().Get("network")
	if network == "" {
		network = h.defaultNetwork
	}

	if snapshot != "" {
		graph, err := h.canvas.Load(r.Context(), snapshot, network)
		if err != nil {
			h.log.Error().Err(err).Str("snapshot", snapshot).Msg("topology load failed")
			h.writeError(w, "Failed to load topology", err.Error(), http.StatusBadGateway)
			return
		}
		h.panel.SetScope(snapshot, network)
		h.panel.Close()
		h.writeJSON(w, graph, http.StatusOK)
		return
	}

	h.writeJSON(w, h.canvas.Graph(), http.StatusOK)
}

// PointerRequest is one pointer gesture step from a client.
type PointerRequest struct {
	Action   string  `json:"action"` // down, move, up, enter, leave
	Hostname string  `json:"hostname,omitempty"`
	EdgeID   string  `json:"edge_id,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Pointer applies a pointer gesture step to the canvas.
func (h *ViewHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "down":
		if req.Hostname == "" {
			h.writeError(w, "Hostname required", "Pointer down targets a node", http.StatusBadRequest)
			return
		}
		h.canvas.PointerDown(req.Hostname, req.X, req.Y)
	case "move":
		h.canvas.PointerMove(req.X, req.Y)
	case "up":
		h.canvas.PointerUp()
	case "enter":
		switch {
		case req.Hostname != "":
			h.canvas.HoverNode(req.Hostname, req.X, req.Y)
		case req.EdgeID != "":
			h.canvas.HoverEdge(req.EdgeID, req.X, req.Y)
		default:
			h.writeError(w, "Hover target required", "Provide hostname or edge_id", http.StatusBadRequest)
			return
		}
	case "leave":
		h.canvas.HoverLeave()
	default:
		h.writeError(w, "Unknown pointer action", req.Action, http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ZoomRequest scales the view about a focal point.
type ZoomRequest struct {
	Factor float64 `json:"factor"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Zoom applies a zoom step.
func (h *ViewHandler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Factor <= 0 {
		h.writeError(w, "Invalid zoom factor", "Factor must be positive", http.StatusBadRequest)
		return
	}

	h.canvas.Zoom(req.Factor, req.X, req.Y)
	w.WriteHeader(http.StatusNoContent)
}

// PanRequest shifts the view.
type PanRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Pan applies a pan step.
func (h *ViewHandler) Pan(w http.ResponseWriter, r *http.Request) {
	var req PanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	h.canvas.Pan(req.DX, req.DY)
	w.WriteHeader(http.StatusNoContent)
}

// OpenPanelRequest names the node whose detail panel should open.
type OpenPanelRequest struct {
	Hostname string `json:"hostname"`
}

// OpenPanel requests the detail panel for a node. Requesting the node that
// is already open toggles the panel closed; a hostname that is not part of
// the loaded graph is a 404.
func (h *ViewHandler) OpenPanel(w http.ResponseWriter, r *http.Request) {
	var req OpenPanelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Hostname == "" {
		h.writeError(w, "Hostname required", "", http.StatusBadRequest)
		return
	}

	if !h.canvas.Select(req.Hostname) {
		h.writeError(w, "Unknown node", req.Hostname, http.StatusNotFound)
		return
	}
	h.writeJSON(w, h.panel.View(), http.StatusOK)
}

// ClosePanelRequest optionally names the close trigger.
type ClosePanelRequest struct {
	Via string `json:"via,omitempty"` // escape, backdrop, button
}

// ClosePanel closes the panel. Escape and backdrop triggers go through the
// attached close hooks, so they are no-ops once the panel is closed.
func (h *ViewHandler) ClosePanel(w http.ResponseWriter, r *http.Request) {
	var req ClosePanelRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // Body is optional
	}

	switch req.Via {
	case "escape":
		h.panel.HandleEscape()
	case "backdrop":
		h.panel.HandleBackdropClick()
	default:
		h.panel.Close()
	}

	h.writeJSON(w, h.panel.View(), http.StatusOK)
}

// GetPanel returns the current panel state.
func (h *ViewHandler) GetPanel(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.panel.View(), http.StatusOK)
}

// GetPositions returns the saved positions for the loaded snapshot.
func (h *ViewHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	snapshot, network := h.canvas.Snapshot()
	positions, err := h.repo.Positions(r.Context(), network, snapshot)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to get positions")
		h.writeError(w, "Failed to get positions", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, positions, http.StatusOK)
}

// SavePositions saves node positions for the loaded snapshot.
func (h *ViewHandler) SavePositions(w http.ResponseWriter, r *http.Request) {
	var positions []domain.NodePosition
	if err := json.NewDecoder(r.Body).Decode(&positions); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	snapshot, network := h.canvas.Snapshot()
	if err := h.repo.SavePositions(r.Context(), network, snapshot, positions); err != nil {
		h.log.Error().Err(err).Msg("failed to save positions")
		h.writeError(w, "Failed to save positions", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]int{"saved": len(positions)}, http.StatusOK)
}

// DeletePositions removes the saved positions for the loaded snapshot.
func (h *ViewHandler) DeletePositions(w http.ResponseWriter, r *http.Request) {
	snapshot, network := h.canvas.Snapshot()
	if err := h.repo.DeletePositions(r.Context(), network, snapshot); err != nil {
		h.log.Error().Err(err).Msg("failed to delete positions")
		h.writeError(w, "Failed to delete positions", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportSVG downloads the current view as an SVG document.
func (h *ViewHandler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	snapshot, _ := h.canvas.Snapshot()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(snapshot, "svg"))

	if err := h.exporter.ExportSVG(w); err != nil {
		h.log.Error().Err(err).Msg("svg export failed")
		// Can't write error response as we already set headers
		return
	}
}

// ExportPNG downloads the current view as a PNG image.
func (h *ViewHandler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	snapshot, _ := h.canvas.Snapshot()

	// Rasterize before touching headers so a failure can still produce a
	// proper error response.
	var buf bytes.Buffer
	if err := h.exporter.ExportPNG(&buf); err != nil {
		h.log.Error().Err(err).Msg("png export failed")
		h.writeError(w, "Failed to render PNG", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(snapshot, "png"))
	w.Write(buf.Bytes())
}

// Healthz reports liveness.
func (h *ViewHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Helper methods

func (h *ViewHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn().Err(err).Msg("failed to encode response")
	}
}

func (h *ViewHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.log.Warn().Err(err).Msg("failed to encode error response")
	}
}
