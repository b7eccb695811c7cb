/*-------------------------------------------------------------------------
 *
 * handlers.go
 *    HTTP handlers for the approval API
 *
 * Provides the handler set for the approval gate, decisions, queues,
 * trigger administration and provisioning endpoints.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/api/handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/approval"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/provisioning"
)

/* TriggerStore is the trigger registry surface exposed over HTTP */
type TriggerStore interface {
	CreateTrigger(ctx context.Context, t *db.OperationTrigger) error
	GetTriggerByCode(ctx context.Context, operationCode string) (*db.OperationTrigger, error)
	ListTriggers(ctx context.Context, category *string, active *bool, limit, offset int) ([]db.OperationTrigger, error)
	UpdateTrigger(ctx context.Context, t *db.OperationTrigger) error
	DeactivateTrigger(ctx context.Context, operationCode string) error
}

type Handlers struct {
	service  *approval.Service
	workflow *provisioning.Workflow
	triggers TriggerStore
	health   func(ctx context.Context) error
}

func NewHandlers(service *approval.Service, workflow *provisioning.Workflow, triggers TriggerStore, health func(ctx context.Context) error) *Handlers {
	return &Handlers{
		service:  service,
		workflow: workflow,
		triggers: triggers,
		health:   health,
	}
}

/* NewRouter builds the full route table with middleware applied */
func NewRouter(h *Handlers, keyManager KeyValidator) *mux.Router {
	r := mux.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(SecurityHeadersMiddleware)
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware)
	if keyManager != nil {
		r.Use(AuthMiddleware(keyManager))
	}

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/approvals/gate", h.Gate).Methods("POST")
	v1.HandleFunc("/approvals", h.CreateApproval).Methods("POST")
	v1.HandleFunc("/approvals", h.ListApprovals).Methods("GET")
	v1.HandleFunc("/approvals/pending", h.PendingQueue).Methods("GET")
	v1.HandleFunc("/approvals/{id}", h.GetApproval).Methods("GET")
	v1.HandleFunc("/approvals/{id}/decision", h.Decide).Methods("POST")

	v1.HandleFunc("/triggers", h.CreateTrigger).Methods("POST")
	v1.HandleFunc("/triggers", h.ListTriggers).Methods("GET")

	/* Provisioning routes go before /triggers/{code} so the literal
	 * path segment is not swallowed by the code variable. */
	v1.HandleFunc("/triggers/provisioning", h.RequestProvisioning).Methods("POST")
	v1.HandleFunc("/triggers/provisioning", h.ListProvisioning).Methods("GET")
	v1.HandleFunc("/triggers/provisioning/{id}", h.GetProvisioning).Methods("GET")
	v1.HandleFunc("/triggers/provisioning/{id}", h.AdvanceProvisioning).Methods("PUT")

	v1.HandleFunc("/triggers/{code}", h.GetTrigger).Methods("GET")
	v1.HandleFunc("/triggers/{code}", h.UpdateTrigger).Methods("PUT")
	v1.HandleFunc("/triggers/{code}", h.DeactivateTrigger).Methods("DELETE")

	return r
}

/* Health reports process and database health */
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, err *APIError) {
	respondJSON(w, err.Code, map[string]interface{}{
		"error": err,
	})
}
