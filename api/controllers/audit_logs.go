package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/api/validators"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/pagination"
)

type auditLogService interface {
	List(ctx context.Context, f auditlog.Filter, params pagination.Params) (pagination.Page[auditlog.EntryDTO], error)
}

func AuditLogsList(svc auditLogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := auditlog.Filter{UserID: userID}
		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action := enums.AuditAction(strings.ToUpper(raw))
			filter.Action = &action
		}
		page, err := svc.List(r.Context(), filter, params)
		respond(w, r, logg, http.StatusOK, page, err)
	}
}
