package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/api/middleware"
	"github.com/seatrelay/seatrelay-backend/internal/payments"
	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
	pkgerrors "github.com/seatrelay/seatrelay-backend/pkg/errors"
	"github.com/seatrelay/seatrelay-backend/pkg/gateway"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
)

type testPaymentsService struct {
	initiateFn func(ctx context.Context, input payments.InitiateInput) (*payments.InitiateResult, error)
	statusFn   func(ctx context.Context, sessionID, requesterID uuid.UUID) (*models.PaymentSession, error)
	confirmFn  func(ctx context.Context, sessionID, requesterID uuid.UUID) (*payments.ConfirmResult, error)
}

func (s *testPaymentsService) Initiate(ctx context.Context, input payments.InitiateInput) (*payments.InitiateResult, error) {
	if s.initiateFn != nil {
		return s.initiateFn(ctx, input)
	}
	return nil, nil
}

func (s *testPaymentsService) Status(ctx context.Context, sessionID, requesterID uuid.UUID) (*models.PaymentSession, error) {
	if s.statusFn != nil {
		return s.statusFn(ctx, sessionID, requesterID)
	}
	return nil, nil
}

func (s *testPaymentsService) ApplyGatewayResult(ctx context.Context, sessionID uuid.UUID, result *gateway.PaymentResult) (*payments.ApplyOutcome, error) {
	return nil, nil
}

func (s *testPaymentsService) Confirm(ctx context.Context, sessionID, requesterID uuid.UUID) (*payments.ConfirmResult, error) {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, sessionID, requesterID)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestPaymentInitSuccess(t *testing.T) {
	buyerID := uuid.New()
	listingID := uuid.New()
	sessionID := uuid.New()
	svc := &testPaymentsService{
		initiateFn: func(ctx context.Context, input payments.InitiateInput) (*payments.InitiateResult, error) {
			if input.BuyerID != buyerID {
				t.Fatalf("unexpected buyer %s", input.BuyerID)
			}
			if input.ListingID != listingID {
				t.Fatalf("unexpected listing %s", input.ListingID)
			}
			if input.Amount != 55000 {
				t.Fatalf("unexpected amount %d", input.Amount)
			}
			return &payments.InitiateResult{SessionID: sessionID, OrderNumber: "ORD-20260901-AB23CD", Amount: 55000}, nil
		},
	}

	body := `{"listing_id":"` + listingID.String() + `","amount":55000,"selected_seats":"A-12"}`
	req := authedRequest(http.MethodPost, "/api/v1/payments/init", body, buyerID)
	resp := httptest.NewRecorder()
	PaymentInit(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data payments.InitiateDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.SessionID != sessionID {
		t.Fatalf("unexpected session id %s", envelope.Data.SessionID)
	}
	if envelope.Data.OrderNumber != "ORD-20260901-AB23CD" {
		t.Fatalf("unexpected order number %s", envelope.Data.OrderNumber)
	}
}

func TestPaymentInitMissingUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/init", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	PaymentInit(&testPaymentsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPaymentInitInvalidBody(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/payments/init", `{"listing_id":"nope"}`, uuid.New())
	resp := httptest.NewRecorder()
	PaymentInit(&testPaymentsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentStatusSuccess(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()
	svc := &testPaymentsService{
		statusFn: func(ctx context.Context, sid, rid uuid.UUID) (*models.PaymentSession, error) {
			if sid != sessionID || rid != userID {
				t.Fatalf("unexpected args %s %s", sid, rid)
			}
			return &models.PaymentSession{ID: sessionID, Status: enums.PaymentSessionStatusInitiated, Amount: 110}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/payments/"+sessionID.String(), "", userID)
	req = addRouteParam(req, "sessionId", sessionID.String())
	resp := httptest.NewRecorder()
	PaymentStatus(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data payments.SessionDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Status != enums.PaymentSessionStatusInitiated {
		t.Fatalf("unexpected session status %s", envelope.Data.Status)
	}
}

func TestPaymentStatusForbidden(t *testing.T) {
	sessionID := uuid.New()
	svc := &testPaymentsService{
		statusFn: func(ctx context.Context, sid, rid uuid.UUID) (*models.PaymentSession, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment session belongs to another user")
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/payments/"+sessionID.String(), "", uuid.New())
	req = addRouteParam(req, "sessionId", sessionID.String())
	resp := httptest.NewRecorder()
	PaymentStatus(svc, testLogger())(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestPaymentConfirmReportsSettledOrder(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()
	svc := &testPaymentsService{
		confirmFn: func(ctx context.Context, sid, rid uuid.UUID) (*payments.ConfirmResult, error) {
			return &payments.ConfirmResult{
				Session:  models.PaymentSession{ID: sessionID, Status: enums.PaymentSessionStatusDone, Amount: 55000},
				Purchase: &models.Purchase{OrderNumber: "ORD-20260901-AB23CD", Status: enums.PurchaseStatusPending},
				Settled:  true,
			}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/payments/"+sessionID.String()+"/confirm", "", userID)
	req = addRouteParam(req, "sessionId", sessionID.String())
	resp := httptest.NewRecorder()
	PaymentConfirm(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data payments.ConfirmDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.Settled {
		t.Fatal("expected settled response")
	}
	if envelope.Data.OrderStatus != enums.PurchaseStatusPending {
		t.Fatalf("unexpected order status %s", envelope.Data.OrderStatus)
	}
}

func TestPaymentConfirmInvalidSessionID(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/payments/invalid/confirm", "", uuid.New())
	req = addRouteParam(req, "sessionId", "invalid")
	resp := httptest.NewRecorder()
	PaymentConfirm(&testPaymentsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
