package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orderdesk/orderdesk-backend/api/middleware"
	"github.com/orderdesk/orderdesk-backend/api/responses"
	"github.com/orderdesk/orderdesk-backend/api/validators"
	billingsvc "github.com/orderdesk/orderdesk-backend/internal/billing"
	ordersvc "github.com/orderdesk/orderdesk-backend/internal/orders"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

// UnpaidOrders lists a seller's billable orders, oldest first.
func UnpaidOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		sellerName := strings.TrimSpace(r.URL.Query().Get("seller_name"))
		if sellerName == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "query parameter seller_name is required"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		orders, err := svc.UnpaidOrders(r.Context(), actor, sellerName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

type markPaidRequest struct {
	SellerName string `json:"seller_name" validate:"required"`
	OrderIDs   []uint `json:"order_ids" validate:"required,min=1"`
}

// MarkOrdersPaid flags delivered and returned orders as settled with the
// shipper.
func MarkOrdersPaid(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload markPaidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		updated, err := svc.MarkPaid(r.Context(), actor, payload.SellerName, payload.OrderIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"message": "orders marked paid", "updated_count": updated})
	}
}

// GenerateBill computes a seller's bill from unpaid orders and stores it when
// a bill number is supplied.
func GenerateBill(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var payload billingsvc.GenerateBillInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		result, err := svc.GenerateBill(r.Context(), actor, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ListBills returns stored bills visible to the actor.
func ListBills(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		bills, err := svc.ListBills(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bills)
	}
}

// GetBill returns one stored bill by its bill number.
func GetBill(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		billNumber := strings.TrimSpace(chi.URLParam(r, "bill_number"))
		if billNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "bill number is required"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		bill, err := svc.GetBill(r.Context(), actor, billNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bill)
	}
}

type deleteBillRequest struct {
	Password string `json:"password" validate:"required"`
}

// DeleteBill removes a stored bill and its derived expenses. The admin must
// re-enter their password.
func DeleteBill(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		id, err := validators.ParsePathUint(chi.URLParam(r, "bill_number"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deleteBillRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if err := svc.DeleteBill(r.Context(), actor, id, payload.Password); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "bill deleted"})
	}
}
