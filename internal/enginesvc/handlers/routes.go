package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)
		r.Get("/games/{gameID}/clock/ws", h.ClockFeed)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Route("/games/{gameID}", func(r chi.Router) {
				r.Get("/clock", h.GameState)
				r.Post("/clock/start", h.StartGame)
				r.Post("/clock/pause", h.PauseGame)
				r.Post("/clock/resume", h.ResumeGame)
				r.Post("/clock/advance", h.AdvanceLevel)
				r.Post("/clock/end", h.EndGame)
				r.Post("/eliminations", h.EliminatePlayer)

				r.Get("/seats", h.TableLayout)
				r.Post("/seats", h.AssignSeat)
				r.Post("/seats/balance", h.BalanceTables)
				r.Post("/seats/moves", h.ApproveMoves)
				r.Post("/seats/final-table", h.FormFinalTable)

				r.Post("/transactions/buy-in", h.RecordBuyIn)
				r.Post("/transactions/rebuy", h.RecordRebuy)
				r.Post("/transactions/add-on", h.RecordAddOn)
				r.Post("/transactions/bounty", h.RecordBounty)
				r.Post("/transactions/payout", h.RecordPayout)
				r.Post("/transactions/expense", h.RecordExpense)

				r.Get("/settlement", h.GetSettlement)
				r.Post("/lock", h.LockFinancials)
				r.Post("/score", h.ScoreGame)
			})

			r.Route("/clubs/{clubID}", func(r chi.Router) {
				r.Get("/ledger", h.TreasuryLedger)
				r.Post("/transactions/dues", h.RecordDuesPayment)
				r.Post("/transactions/treasury-adjustment", h.RecordTreasuryAdjustment)
				r.Post("/transactions/player-adjustment", h.RecordPlayerBalanceAdjustment)
			})

			r.Post("/transactions/{txID}/void", h.VoidTransaction)
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"person_id": 1000001,
		"exp":       expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
