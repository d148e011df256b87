package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/engine"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	upgrader  websocket.Upgrader

	clockSvc     *service.ClockService
	seatingSvc   *service.SeatingService
	ledgerSvc    *service.LedgerService
	standingsSvc *service.StandingsService
}

func NewHandler(clock *service.ClockService, seating *service.SeatingService,
	ledger *service.LedgerService, standings *service.StandingsService) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clockSvc:     clock,
		seatingSvc:   seating,
		ledgerSvc:    ledger,
		standingsSvc: standings,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// errorResponse maps the domain error types onto HTTP codes.
func (h *Handler) errorResponse(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError

	var nf *engine.NotFoundError
	var it *engine.InvalidTransitionError
	var ve *engine.ValidationError
	var ub *engine.UnbalancedSettlementError
	var av *engine.AlreadyVoidedError

	switch {
	case errors.As(err, &nf):
		code = http.StatusNotFound
	case errors.As(err, &it):
		code = http.StatusConflict
	case errors.As(err, &ve):
		code = http.StatusBadRequest
	case errors.As(err, &ub):
		code = http.StatusConflict
	case errors.As(err, &av):
		code = http.StatusConflict
	default:
		log.Errorf("internal error: %v", err)
	}

	h.CreateResponse(w, Response{Code: code, Error: err.Error()})
}

func (h *Handler) ok(w http.ResponseWriter, data interface{}) {
	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: data})
}

// actorID reads the acting person from the verified JWT claims.
func (h *Handler) actorID(r *http.Request) (int64, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, err
	}

	switch v := claims["person_id"].(type) {
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, engine.Validationf("token carries no person_id claim")
}

func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, engine.Validationf("invalid %s", name)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return engine.Validationf("malformed request body")
	}
	return nil
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "engine service is running at port " + os.Getenv("SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

// clockAction runs one of the lifecycle transitions and returns the fresh
// clock view.
func (h *Handler) clockAction(w http.ResponseWriter, r *http.Request,
	fn func(gameID, actorID int64) (*models.GameStateView, error)) {

	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	actor, err := h.actorID(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	view, err := fn(gameID, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, view)
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	h.clockAction(w, r, func(gameID, actor int64) (*models.GameStateView, error) {
		return h.clockSvc.Start(r.Context(), gameID, actor)
	})
}

func (h *Handler) PauseGame(w http.ResponseWriter, r *http.Request) {
	h.clockAction(w, r, func(gameID, actor int64) (*models.GameStateView, error) {
		return h.clockSvc.Pause(r.Context(), gameID, actor)
	})
}

func (h *Handler) ResumeGame(w http.ResponseWriter, r *http.Request) {
	h.clockAction(w, r, func(gameID, actor int64) (*models.GameStateView, error) {
		return h.clockSvc.Resume(r.Context(), gameID, actor)
	})
}

func (h *Handler) AdvanceLevel(w http.ResponseWriter, r *http.Request) {
	h.clockAction(w, r, func(gameID, actor int64) (*models.GameStateView, error) {
		return h.clockSvc.AdvanceLevel(r.Context(), gameID, actor)
	})
}

func (h *Handler) EndGame(w http.ResponseWriter, r *http.Request) {
	h.clockAction(w, r, func(gameID, actor int64) (*models.GameStateView, error) {
		return h.clockSvc.End(r.Context(), gameID, actor)
	})
}

func (h *Handler) GameState(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	view, err := h.clockSvc.State(r.Context(), gameID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, view)
}

func (h *Handler) EliminatePlayer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonID     int64  `json:"person_id"`
		EliminatedBy *int64 `json:"eliminated_by"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	h.clockAction(w, r, func(gameID, actor int64) (*models.GameStateView, error) {
		return h.clockSvc.Eliminate(r.Context(), gameID, payload.PersonID, payload.EliminatedBy, actor)
	})
}

func (h *Handler) AssignSeat(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	actor, err := h.actorID(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	var payload struct {
		PersonID int64 `json:"person_id"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	layout, err := h.seatingSvc.AssignSeat(r.Context(), gameID, payload.PersonID, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, layout)
}

func (h *Handler) TableLayout(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	layout, err := h.seatingSvc.Layout(r.Context(), gameID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, layout)
}

func (h *Handler) BalanceTables(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	layout, err := h.seatingSvc.BalanceTables(r.Context(), gameID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, layout)
}

func (h *Handler) ApproveMoves(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	actor, err := h.actorID(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	var payload struct {
		Moves []models.SeatMove `json:"moves"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	layout, err := h.seatingSvc.ApproveMoves(r.Context(), gameID, payload.Moves, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, layout)
}

func (h *Handler) FormFinalTable(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	actor, err := h.actorID(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	layout, err := h.seatingSvc.FormFinalTable(r.Context(), gameID, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, layout)
}

func (h *Handler) ScoreGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	sessions, err := h.standingsSvc.ScoreGame(r.Context(), gameID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, sessions)
}
