package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// gameMoney covers the recording operations that need only a game, a person
// and the acting staff member; the amount comes from the game's configured
// prices.
func (h *Handler) gameMoney(w http.ResponseWriter, r *http.Request,
	fn func(gameID, personID, actorID int64) (*models.Transaction, error)) {

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

	tx, err := fn(gameID, payload.PersonID, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, tx)
}

func (h *Handler) RecordBuyIn(w http.ResponseWriter, r *http.Request) {
	h.gameMoney(w, r, func(gameID, personID, actor int64) (*models.Transaction, error) {
		return h.ledgerSvc.RecordBuyIn(r.Context(), gameID, personID, actor)
	})
}

func (h *Handler) RecordRebuy(w http.ResponseWriter, r *http.Request) {
	h.gameMoney(w, r, func(gameID, personID, actor int64) (*models.Transaction, error) {
		return h.ledgerSvc.RecordRebuy(r.Context(), gameID, personID, actor)
	})
}

func (h *Handler) RecordAddOn(w http.ResponseWriter, r *http.Request) {
	h.gameMoney(w, r, func(gameID, personID, actor int64) (*models.Transaction, error) {
		return h.ledgerSvc.RecordAddOn(r.Context(), gameID, personID, actor)
	})
}

func (h *Handler) RecordBounty(w http.ResponseWriter, r *http.Request) {
	h.gameMoney(w, r, func(gameID, collectorID, actor int64) (*models.Transaction, error) {
		return h.ledgerSvc.RecordBounty(r.Context(), gameID, collectorID, actor)
	})
}

func (h *Handler) RecordPayout(w http.ResponseWriter, r *http.Request) {
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
		PersonID int64           `json:"person_id"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	tx, err := h.ledgerSvc.RecordPayout(r.Context(), gameID, payload.PersonID, payload.Amount, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, tx)
}

func (h *Handler) RecordExpense(w http.ResponseWriter, r *http.Request) {
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
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	tx, err := h.ledgerSvc.RecordExpense(r.Context(), gameID, payload.Amount, payload.Description, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, tx)
}

func (h *Handler) RecordDuesPayment(w http.ResponseWriter, r *http.Request) {
	clubID, err := urlID(r, "clubID")
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
		PersonID int64           `json:"person_id"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	tx, err := h.ledgerSvc.RecordDuesPayment(r.Context(), clubID, payload.PersonID, payload.Amount, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, tx)
}

func (h *Handler) RecordTreasuryAdjustment(w http.ResponseWriter, r *http.Request) {
	clubID, err := urlID(r, "clubID")
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
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	tx, err := h.ledgerSvc.RecordTreasuryAdjustment(r.Context(), clubID, payload.Amount, payload.Description, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, tx)
}

func (h *Handler) RecordPlayerBalanceAdjustment(w http.ResponseWriter, r *http.Request) {
	clubID, err := urlID(r, "clubID")
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
		PersonID    int64           `json:"person_id"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	tx, err := h.ledgerSvc.RecordPlayerBalanceAdjustment(r.Context(), clubID,
		payload.PersonID, payload.Amount, payload.Description, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, tx)
}

func (h *Handler) VoidTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := urlID(r, "txID")
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
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &payload); err != nil {
		h.errorResponse(w, err)
		return
	}

	tx, err := h.ledgerSvc.VoidTransaction(r.Context(), txID, payload.Reason, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, tx)
}

func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	view, err := h.ledgerSvc.GetSettlement(r.Context(), gameID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, view)
}

func (h *Handler) LockFinancials(w http.ResponseWriter, r *http.Request) {
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

	g, err := h.ledgerSvc.LockFinancials(r.Context(), gameID, actor)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, g)
}

func (h *Handler) TreasuryLedger(w http.ResponseWriter, r *http.Request) {
	clubID, err := urlID(r, "clubID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, err = strconv.Atoi(p)
		if err != nil {
			h.errorResponse(w, err)
			return
		}
	}

	ledger, err := h.ledgerSvc.GetTreasuryLedger(r.Context(), clubID, page)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.ok(w, ledger)
}
