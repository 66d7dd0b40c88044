package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mateovergara/sitesupply-backend/api/middleware"
	"github.com/mateovergara/sitesupply-backend/api/responses"
	"github.com/mateovergara/sitesupply-backend/api/validators"
	internalorders "github.com/mateovergara/sitesupply-backend/internal/orders"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
	"github.com/mateovergara/sitesupply-backend/pkg/logger"
	"github.com/mateovergara/sitesupply-backend/pkg/pagination"
)

type createOrderRequest struct {
	ProjectID         uuid.UUID `json:"project_id" validate:"required"`
	MaterialRequestID uuid.UUID `json:"material_request_id" validate:"required"`
	VendorID          uuid.UUID `json:"vendor_id" validate:"required"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// CreateOrder raises a draft purchase order from an approved material request.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), internalorders.CreateOrderInput{
			ProjectID:         req.ProjectID,
			MaterialRequestID: req.MaterialRequestID,
			VendorID:          req.VendorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buildOrderView(order))
	}
}

// ListOrders pages through the orders visible to the caller.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var status *enums.OrderStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed := enums.OrderStatus(raw)
			if !parsed.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			status = &parsed
		}

		list, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns one order if the caller passes the access gate.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildOrderView(order))
	}
}

// AcknowledgeOrder records vendor receipt of a sent order.
func AcknowledgeOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Acknowledge(r.Context(), middleware.ActorFromContext(r.Context()), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.OrderStatusAcknowledged)})
	}
}

// CancelOrder cancels a non-terminal order and closes its negotiation.
func CancelOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), middleware.ActorFromContext(r.Context()), orderID, req.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.OrderStatusCancelled)})
	}
}
