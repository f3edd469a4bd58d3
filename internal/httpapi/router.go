package httpapi

import (
	"net/http"
)

type Handlers struct {
	Payments *PaymentHandler
	Quotes   *QuoteHandler
	Addons   *AddonHandler
	Auth     *AuthHandler
}

// NewRouter builds the route table. Middleware (request id, logging,
// auth, rate limiting) wraps the returned handler in main.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /payments/deposit", h.Payments.PostDeposit)
	mux.HandleFunc("POST /payments/balance", h.Payments.PostBalance)
	mux.HandleFunc("GET /payments/deposit", h.Payments.GetDepositStatus)
	mux.HandleFunc("GET /payments/balance", h.Payments.GetBalanceStatus)

	mux.HandleFunc("POST /quotes", h.Quotes.PostQuote)
	mux.HandleFunc("GET /quotes/{id}", h.Quotes.GetQuote)
	mux.HandleFunc("POST /quotes/{id}/approve", h.Quotes.PostApprove)
	mux.HandleFunc("POST /quotes/{id}/confirm", h.Quotes.PostConfirm)
	mux.HandleFunc("POST /quotes/{id}/cancel", h.Quotes.PostCancel)

	mux.HandleFunc("GET /addons", h.Addons.GetAddons)
	mux.HandleFunc("GET /addons/{id}", h.Addons.GetAddon)
	mux.HandleFunc("POST /addons", h.Addons.PostAddon)
	mux.HandleFunc("PATCH /addons/{id}", h.Addons.PatchAddon)
	mux.HandleFunc("DELETE /addons/{id}", h.Addons.DeleteAddon)

	mux.HandleFunc("POST /auth/login", h.Auth.PostLogin)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}
