package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/api/middleware"
	"github.com/seatrelay/seatrelay-backend/api/responses"
	"github.com/seatrelay/seatrelay-backend/api/validators"
	"github.com/seatrelay/seatrelay-backend/internal/payments"
	pkgerrors "github.com/seatrelay/seatrelay-backend/pkg/errors"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
)

type paymentInitRequest struct {
	ListingID     string `json:"listing_id" validate:"required,uuid"`
	Amount        int64  `json:"amount"`
	SelectedSeats string `json:"selected_seats" validate:"max=500"`
}

// PaymentInit creates a pending purchase and its payment session.
func PaymentInit(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		buyerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req paymentInitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := uuid.Parse(req.ListingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id"))
			return
		}

		result, err := svc.Initiate(r.Context(), payments.InitiateInput{
			BuyerID:   buyerID,
			ListingID: listingID,
			Amount:    req.Amount,
			Seats:     req.SelectedSeats,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, payments.InitiateDTO{
			SessionID:   result.SessionID,
			OrderNumber: result.OrderNumber,
			Amount:      result.Amount,
		})
	}
}

// PaymentStatus returns the current state of a payment session.
func PaymentStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := sessionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Status(r.Context(), sessionID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payments.ToSessionDTO(*session))
	}
}

// PaymentConfirm reconciles a session against the gateway after redirect.
func PaymentConfirm(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := sessionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Confirm(r.Context(), sessionID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto := payments.ConfirmDTO{
			Session: payments.ToSessionDTO(result.Session),
			Settled: result.Settled,
		}
		if result.Purchase != nil {
			dto.OrderNumber = result.Purchase.OrderNumber
			dto.OrderStatus = result.Purchase.Status
		}
		responses.WriteSuccess(w, dto)
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

func sessionIDParam(r *http.Request) (uuid.UUID, error) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid session id")
	}
	return sessionID, nil
}
