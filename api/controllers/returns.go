package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orderdesk/orderdesk-backend/api/middleware"
	"github.com/orderdesk/orderdesk-backend/api/responses"
	"github.com/orderdesk/orderdesk-backend/api/validators"
	returnssvc "github.com/orderdesk/orderdesk-backend/internal/returns"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

type returnScanRequest struct {
	TrackingID string `json:"tracking_id" validate:"required"`
}

// ScanReturn logs a returned parcel, enriched from the matching order.
func ScanReturn(svc returnssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "return-scan service unavailable"))
			return
		}

		var payload returnScanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		scan, err := svc.Scan(r.Context(), actor, payload.TrackingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, scan)
	}
}

// ListReturnScans returns the scan log, seller-scoped for sellers.
func ListReturnScans(svc returnssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "return-scan service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		scans, err := svc.List(
			r.Context(),
			actor,
			strings.TrimSpace(r.URL.Query().Get("date")),
			strings.TrimSpace(r.URL.Query().Get("seller_name")),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, scans)
	}
}

// DeleteReturnScan removes one scan record.
func DeleteReturnScan(svc returnssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "return-scan service unavailable"))
			return
		}

		id, err := validators.ParsePathUint(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "scan deleted"})
	}
}

// ClearReturnScans wipes one day's scan log.
func ClearReturnScans(svc returnssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "return-scan service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		deleted, err := svc.ClearDate(r.Context(), actor, chi.URLParam(r, "date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"message":       "scans cleared",
			"deleted_count": deleted,
		})
	}
}
