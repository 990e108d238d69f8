package handler

import (
	"net/http"

	"github.com/rs/zerolog"
)

// NewRouter builds the full route table with middleware applied.
func NewRouter(h *ViewHandler, sse http.Handler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Topology
	mux.HandleFunc("GET /api/topology", h.GetTopology)

	// Canvas interaction
	mux.HandleFunc("POST /api/canvas/pointer", h.Pointer)
	mux.HandleFunc("POST /api/canvas/zoom", h.Zoom)
	mux.HandleFunc("POST /api/canvas/pan", h.Pan)

	// Detail panel
	mux.HandleFunc("GET /api/panel", h.GetPanel)
	mux.HandleFunc("POST /api/panel/open", h.OpenPanel)
	mux.HandleFunc("POST /api/panel/close", h.ClosePanel)

	// Position persistence
	mux.HandleFunc("GET /api/positions", h.GetPositions)
	mux.HandleFunc("POST /api/positions", h.SavePositions)
	mux.HandleFunc("DELETE /api/positions", h.DeletePositions)

	// Export
	mux.HandleFunc("GET /api/export/svg", h.ExportSVG)
	mux.HandleFunc("GET /api/export/png", h.ExportPNG)

	// Events (SSE)
	if sse != nil {
		mux.Handle("GET /events", sse)
	}

	mux.HandleFunc("GET /healthz", h.Healthz)

	return Chain(mux,
		Recover(log),
		CORS,
		Logger(log),
	)
}
