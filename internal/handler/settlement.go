// Package handler provides HTTP handlers for the settlement service.
package handler

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"cashflow/internal/scenario"
	"cashflow/internal/settlement"
	"cashflow/pkg/errors"
	"cashflow/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type SettlementHandler struct {
	service   *settlement.Service
	validator *validator.Validator
	limits    scenario.Limits
	logger    Logger
}

func NewSettlementHandler(service *settlement.Service, val *validator.Validator, limits scenario.Limits, log Logger) *SettlementHandler {
	return &SettlementHandler{service: service, validator: val, limits: limits, logger: log}
}

// Register mounts the settlement routes on r.
func (h *SettlementHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/settlements", h.CreateSettlement).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/settlements/{id}", h.GetSettlement).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/balances", h.ComputeBalances).Methods(http.MethodPost)
}

// CreateSettlement settles the scenario in the request body and returns the plan.
func (h *SettlementHandler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}

	plan, err := h.service.Settle(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "Settlement failed")
		return
	}

	h.respondJSON(w, http.StatusCreated, plan)
}

// GetSettlement returns a previously computed plan.
func (h *SettlementHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid settlement ID")
		return
	}

	plan, err := h.service.GetPlan(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to fetch settlement")
		return
	}

	h.respondJSON(w, http.StatusOK, plan)
}

// ComputeBalances returns the net balance of every party in the scenario.
func (h *SettlementHandler) ComputeBalances(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}

	balances, err := h.service.Balances(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "Balance computation failed")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"balances": balances,
	})
}

// decodeScenario reads, validates and builds the scenario in the body. It
// writes the error response itself and reports whether decoding succeeded.
func (h *SettlementHandler) decodeScenario(w http.ResponseWriter, r *http.Request) (*settlement.Request, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	f, err := scenario.Parse(body, "json")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	scenario.Normalize(f)
	if errs := h.validator.ValidateStructured(f); errs != nil {
		h.respondValidationErrors(w, errs)
		return nil, false
	}

	req, err := scenario.Build(f, h.validator, h.limits)
	if err != nil {
		h.respondServiceError(w, err, "Invalid scenario")
		return nil, false
	}

	return req, true
}

func (h *SettlementHandler) respondServiceError(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, map[string]interface{}{"error": err.Error()})
		h.respondError(w, status, "Internal server error")
		return
	}

	h.logger.Warn(message, map[string]interface{}{"error": err.Error(), "status": status})
	h.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.IsConfiguration(err):
		return http.StatusUnprocessableEntity
	case errors.IsValidation(err), stderrors.Is(err, errors.ErrAmountOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON responds with JSON.
func (h *SettlementHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError responds with an error message.
func (h *SettlementHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// respondValidationErrors responds with validation errors.
func (h *SettlementHandler) respondValidationErrors(w http.ResponseWriter, errs map[string]string) {
	h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}
