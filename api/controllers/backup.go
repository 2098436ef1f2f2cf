package controllers

import (
	"net/http"

	"github.com/orderdesk/orderdesk-backend/api/middleware"
	"github.com/orderdesk/orderdesk-backend/api/responses"
	"github.com/orderdesk/orderdesk-backend/api/validators"
	backupsvc "github.com/orderdesk/orderdesk-backend/internal/backup"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

// CreateBackup streams a full snapshot of every table.
func CreateBackup(svc backupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		snapshot, err := svc.Export(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Disposition", `attachment; filename="orderdesk-backup.json"`)
		responses.WriteSuccess(w, snapshot)
	}
}

// RestoreBackup upserts every row of an uploaded snapshot.
func RestoreBackup(svc backupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		var snapshot backupsvc.Snapshot
		if err := validators.DecodeJSONBody(r, &snapshot); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		result, err := svc.Restore(r.Context(), actor, &snapshot)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
