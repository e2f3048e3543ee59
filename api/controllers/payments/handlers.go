package payments

import (
	"net/http"

	"github.com/modomarket/modomarket-backend/api/controllers"
	"github.com/modomarket/modomarket-backend/api/responses"
	"github.com/modomarket/modomarket-backend/api/validators"
	paymentsvc "github.com/modomarket/modomarket-backend/internal/payments"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
	"github.com/modomarket/modomarket-backend/pkg/logger"
)

// Confirm reconciles a gateway capture with order assembly. The capture is
// verified against the computed order total before anything is committed.
func Confirm(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		userID, err := controllers.ActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ConfirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ConfirmPayment(r.Context(), payload.ToInput(userID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newConfirmResult(result))
	}
}

// ByOrder returns the payment record tied to one of the buyer's orders.
func ByOrder(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		userID, err := controllers.ActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.GetPaymentByOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPayment(payment))
	}
}

