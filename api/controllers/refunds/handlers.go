package refunds

import (
	"net/http"

	"github.com/modomarket/modomarket-backend/api/controllers"
	"github.com/modomarket/modomarket-backend/api/responses"
	"github.com/modomarket/modomarket-backend/api/validators"
	refundsvc "github.com/modomarket/modomarket-backend/internal/refunds"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
	"github.com/modomarket/modomarket-backend/pkg/logger"
)

// Create opens a refund or exchange case against one of the buyer's order items.
func Create(svc refundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		userID, err := controllers.ActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload CreateRefundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refund, err := svc.CreateRefund(r.Context(), payload.ToInput(userID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newRefund(refund))
	}
}

// List returns the caller's refund cases, as buyer or as seller.
func List(svc refundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		userID, err := controllers.ActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := refundsvc.ListRole(r.URL.Query().Get("role"))
		if role == "" {
			role = refundsvc.ListRoleBuyer
		}

		list, err := svc.ListRefunds(r.Context(), userID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRefundList(list))
	}
}

// Cancel withdraws the buyer's own case while it is still awaiting a decision.
func Cancel(svc refundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		userID, err := controllers.ActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refundID, err := validators.UUIDParam(r, "refundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.CancelRefund(r.Context(), userID, refundID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// Approve records the seller's acceptance of a requested case.
func Approve(svc refundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerAction(svc, logg, "approved", func(r *http.Request, svc refundsvc.Service, input refundsvc.SellerActionInput) error {
		return svc.ApproveRefund(r.Context(), input)
	})
}

// Reject records the seller's rejection of a requested case.
func Reject(svc refundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerAction(svc, logg, "rejected", func(r *http.Request, svc refundsvc.Service, input refundsvc.SellerActionInput) error {
		return svc.RejectRefund(r.Context(), input)
	})
}

// Complete settles an approved case, flipping the item and restoring stock
// for plain refunds.
func Complete(svc refundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerAction(svc, logg, "completed", func(r *http.Request, svc refundsvc.Service, input refundsvc.SellerActionInput) error {
		return svc.CompleteRefund(r.Context(), input)
	})
}

func sellerAction(
	svc refundsvc.Service,
	logg *logger.Logger,
	resultStatus string,
	act func(*http.Request, refundsvc.Service, refundsvc.SellerActionInput) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		sellerID, err := controllers.ActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refundID, err := validators.UUIDParam(r, "refundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := decodeSellerAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := refundsvc.SellerActionInput{
			SellerID:       sellerID,
			RefundID:       refundID,
			SellerResponse: payload.SellerResponse,
		}

		if err := act(r, svc, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": resultStatus})
	}
}

func decodeSellerAction(r *http.Request) (SellerActionRequest, error) {
	var payload SellerActionRequest
	if r.ContentLength == 0 {
		return payload, nil
	}
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

