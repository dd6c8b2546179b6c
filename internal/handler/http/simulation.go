package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/run"
	"github.com/forcemodel/forcesim-backend-go/internal/handler/http/response"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/jwt"
	"github.com/forcemodel/forcesim-backend-go/internal/service/simulation"
)

type SimulationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Advance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Units(w http.ResponseWriter, r *http.Request)
	Roster(w http.ResponseWriter, r *http.Request)
	Vacancies(w http.ResponseWriter, r *http.Request)
	Archive(w http.ResponseWriter, r *http.Request)
	StreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type SimulationHandlerImpl struct {
	simService *simulation.Service
	jwtService jwt.Service
}

func NewSimulationHandler(simService *simulation.Service, jwtService jwt.Service) SimulationHandler {
	return &SimulationHandlerImpl{simService: simService, jwtService: jwtService}
}

// Create implements SimulationHandler.
func (h *SimulationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req run.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.simService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Run created", resp)
}

// Advance implements SimulationHandler.
func (h *SimulationHandlerImpl) Advance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req run.AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.simService.Advance(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// List implements SimulationHandler.
func (h *SimulationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.simService.List(r.Context()))
}

// Get implements SimulationHandler.
func (h *SimulationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.simService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Units implements SimulationHandler.
func (h *SimulationHandlerImpl) Units(w http.ResponseWriter, r *http.Request) {
	units, err := h.simService.Units(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, units)
}

// Roster implements SimulationHandler.
func (h *SimulationHandlerImpl) Roster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.simService.Roster(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "uic"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, roster)
}

// Vacancies implements SimulationHandler.
func (h *SimulationHandlerImpl) Vacancies(w http.ResponseWriter, r *http.Request) {
	stage := r.URL.Query().Get("stage")

	vacancies, err := h.simService.Vacancies(r.Context(), chi.URLParam(r, "id"), stage)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, vacancies)
}

// Archive implements SimulationHandler.
func (h *SimulationHandlerImpl) Archive(w http.ResponseWriter, r *http.Request) {
	resp, err := h.simService.Archive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Run archived", resp)
}

// StreamToken issues a short-lived token for the run's event stream.
func (h *SimulationHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.simService.Get(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken("api", id)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, map[string]any{
		"token":      token,
		"expires_in": expiresIn,
	})
}

// Stream handles the SSE connection for real-time engine events.
func (h *SimulationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// EventSource cannot set headers, so the token rides the query string.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	runID, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil || runID != id {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, cleanup, err := h.simService.Subscribe(id)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"run_id\":\"%s\"}\n\n", id)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
