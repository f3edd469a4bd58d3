package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"oakfire-be/internal/addon"
	"oakfire-be/internal/logger"
	"oakfire-be/internal/payment"
	"oakfire-be/internal/quote"
	"oakfire-be/internal/user"
	"oakfire-be/internal/utils"

	"go.uber.org/zap"
)

type errorBody struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps domain errors onto the HTTP surface. Unrecognized
// errors become an opaque 500; internals never leak to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	if status >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	respondJSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	var mismatch *payment.AmountMismatchError
	var transition *quote.InvalidTransitionError

	switch {
	case errors.As(err, &mismatch):
		return http.StatusBadRequest, errorBody{
			Error: "payment amount does not match the quote",
			Details: map[string]interface{}{
				"phase":         string(mismatch.Phase),
				"expectedCents": mismatch.ExpectedCents,
				"receivedCents": mismatch.ReceivedCents,
			},
		}

	case errors.As(err, &transition):
		return http.StatusBadRequest, errorBody{
			Error: "quote status does not allow this action",
			Details: map[string]interface{}{
				"currentStatus":    string(transition.Current),
				"expectedStatuses": statusStrings(transition.Expected),
			},
		}

	case errors.Is(err, payment.ErrPaymentFailed),
		errors.Is(err, payment.ErrMissingTransactionID),
		errors.Is(err, payment.ErrUnsupportedCurrency),
		errors.Is(err, quote.ErrInvalidInput),
		errors.Is(err, addon.ErrInvalidInput),
		errors.Is(err, addon.ErrEmptyUpdate):
		return http.StatusBadRequest, errorBody{Error: err.Error()}

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody{Error: err.Error()}

	case errors.Is(err, payment.ErrTokenInvalid),
		errors.Is(err, payment.ErrTokenExpired),
		errors.Is(err, payment.ErrTokenStale),
		errors.Is(err, addon.ErrUnauthorized):
		return http.StatusForbidden, errorBody{Error: err.Error()}

	case errors.Is(err, payment.ErrAttemptInFlight):
		return http.StatusConflict, errorBody{Error: err.Error()}

	case errors.Is(err, quote.ErrQuoteNotFound),
		errors.Is(err, addon.ErrAddonNotFound),
		errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, errorBody{Error: "not found"}

	case errors.Is(err, payment.ErrOrderCreation):
		// Payment captured, fulfillment pending manual reconciliation.
		return http.StatusInternalServerError, errorBody{
			Error: "payment received but order processing failed; our team has been notified",
		}

	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}

func statusStrings(statuses []quote.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func requireAdmin(r *http.Request) bool {
	return utils.GetAdminRoleFromContext(r.Context()) == string(user.RoleAdmin)
}
