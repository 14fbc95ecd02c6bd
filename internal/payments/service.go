package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seatrelay/seatrelay-backend/internal/listings"
	"github.com/seatrelay/seatrelay-backend/internal/purchases"
	"github.com/seatrelay/seatrelay-backend/pkg/db"
	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
	pkgerrors "github.com/seatrelay/seatrelay-backend/pkg/errors"
	"github.com/seatrelay/seatrelay-backend/pkg/gateway"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns payment sessions and funnels every gateway outcome into the
// ledger through one idempotent write path.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error)
	Status(ctx context.Context, sessionID, requesterID uuid.UUID) (*models.PaymentSession, error)
	ApplyGatewayResult(ctx context.Context, sessionID uuid.UUID, result *gateway.PaymentResult) (*ApplyOutcome, error)
	Confirm(ctx context.Context, sessionID, requesterID uuid.UUID) (*ConfirmResult, error)
}

// InitiateInput starts a purchase plus its payment session.
type InitiateInput struct {
	BuyerID   uuid.UUID
	ListingID uuid.UUID
	Amount    int64
	Seats     string
}

// InitiateResult returns the correlation id the client hands to the gateway.
type InitiateResult struct {
	SessionID   uuid.UUID
	OrderNumber string
	Amount      int64
}

// ApplyOutcome reports the session and purchase after a gateway result was
// funneled in. Applied is false for replays of an already-final session.
type ApplyOutcome struct {
	Session  models.PaymentSession
	Purchase *models.Purchase
	Applied  bool
}

// ConfirmResult is the reconciled state after a bounded verification poll.
// Settled is false when the gateway had not finalized within the window.
type ConfirmResult struct {
	Session  models.PaymentSession
	Purchase *models.Purchase
	Settled  bool
}

// Policy tunes initiation behavior per environment.
type Policy struct {
	// MinTestAmount replaces non-positive amounts outside production so
	// gateway sandboxes accept the charge.
	MinTestAmount int64
	Production    bool
}

type service struct {
	repo         Repository
	purchaseRepo purchases.Repository
	listingRepo  listings.Repository
	guard        purchases.Service
	tx           txRunner
	poller       *Poller
	logg         *logger.Logger
	policy       Policy
	now          func() time.Time
}

// NewService builds the payment session service.
func NewService(
	repo Repository,
	purchaseRepo purchases.Repository,
	listingRepo listings.Repository,
	guard purchases.Service,
	tx txRunner,
	poller *Poller,
	logg *logger.Logger,
	policy Policy,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if purchaseRepo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if listingRepo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if guard == nil {
		return nil, fmt.Errorf("purchase guard required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if policy.MinTestAmount <= 0 {
		policy.MinTestAmount = 110
	}
	return &service{
		repo:         repo,
		purchaseRepo: purchaseRepo,
		listingRepo:  listingRepo,
		guard:        guard,
		tx:           tx,
		poller:       poller,
		logg:         logg,
		policy:       policy,
		now:          time.Now,
	}, nil
}

func (s *service) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	listing, err := s.listingRepo.FindByID(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading listing")
	}
	if listing.Status != enums.ListingStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "listing is no longer available")
	}
	if listing.SellerID == input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot purchase your own listing")
	}

	amount := input.Amount
	if amount <= 0 {
		if s.policy.Production {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
		}
		amount = s.policy.MinTestAmount
	}

	var result *InitiateResult
	// Retry on the rare order-number collision; the unique index is the
	// source of truth.
	for attempt := 0; attempt < 3; attempt++ {
		orderNumber := purchases.NewOrderNumber(s.now())
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			purchase := &models.Purchase{
				OrderNumber:   orderNumber,
				BuyerID:       input.BuyerID,
				SellerID:      listing.SellerID,
				ListingID:     listing.ID,
				Status:        enums.PurchaseStatusPending,
				TotalPrice:    amount,
				SelectedSeats: input.Seats,
			}
			if err := s.purchaseRepo.WithTx(tx).Create(ctx, purchase); err != nil {
				return err
			}

			session := &models.PaymentSession{
				ID:         uuid.New(),
				PurchaseID: purchase.ID,
				Amount:     amount,
				Status:     enums.PaymentSessionStatusInitiated,
			}
			if err := s.repo.WithTx(tx).Create(ctx, session); err != nil {
				return err
			}

			result = &InitiateResult{
				SessionID:   session.ID,
				OrderNumber: purchase.OrderNumber,
				Amount:      amount,
			}
			return nil
		})
		if err == nil {
			break
		}
		if !db.IsUniqueViolation(err, "idx_purchases_order_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating purchase")
		}
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating purchase")
	}

	ctx = s.logg.WithSessionID(ctx, result.SessionID.String())
	s.logg.Info(s.logg.WithOrderNumber(ctx, result.OrderNumber), "payment session initiated")
	return result, nil
}

func (s *service) Status(ctx context.Context, sessionID, requesterID uuid.UUID) (*models.PaymentSession, error) {
	session, purchase, err := s.loadSession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if requesterID != uuid.Nil && purchase.BuyerID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment session belongs to another user")
	}
	return session, nil
}

func (s *service) ApplyGatewayResult(ctx context.Context, sessionID uuid.UUID, result *gateway.PaymentResult) (*ApplyOutcome, error) {
	target, err := sessionStatusFor(result.Status)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithSessionID(ctx, sessionID.String())

	var outcome *ApplyOutcome
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		session, purchase, err := s.loadSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		// Replays of a finalized session are successful no-ops regardless
		// of what the replay claims.
		if session.Status.IsTerminal() {
			outcome = &ApplyOutcome{Session: *session, Purchase: purchase, Applied: false}
			return nil
		}

		if result.Amount > 0 && result.Amount != session.Amount {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"session_amount": session.Amount,
				"gateway_amount": result.Amount,
			}), "gateway amount differs from session amount")
		}

		var failureReason *string
		if target != enums.PaymentSessionStatusDone && result.FailureReason != "" {
			reason := result.FailureReason
			failureReason = &reason
		}

		swapped, err := s.repo.WithTx(tx).CompareAndSwapStatus(ctx, sessionID, target, failureReason)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalizing payment session")
		}
		if !swapped {
			current, _, err := s.loadSession(ctx, tx, sessionID)
			if err != nil {
				return err
			}
			outcome = &ApplyOutcome{Session: *current, Purchase: purchase, Applied: false}
			return nil
		}

		// A failed or abandoned payment releases the pending purchase.
		if target == enums.PaymentSessionStatusFailed || target == enums.PaymentSessionStatusCancelled {
			transition, err := s.guard.TransitionTx(ctx, tx, purchases.TransitionInput{
				OrderNumber: purchase.OrderNumber,
				Target:      enums.PurchaseStatusCancelled,
				System:      true,
			})
			if err != nil {
				return err
			}
			purchase = &transition.Purchase
		}

		session, _, err = s.loadSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		outcome = &ApplyOutcome{Session: *session, Purchase: purchase, Applied: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Applied {
		s.logg.Info(s.logg.WithField(ctx, "status", outcome.Session.Status.String()), "payment session finalized")
	}
	return outcome, nil
}

func (s *service) Confirm(ctx context.Context, sessionID, requesterID uuid.UUID) (*ConfirmResult, error) {
	session, err := s.Status(ctx, sessionID, requesterID)
	if err != nil {
		return nil, err
	}

	// Already reconciled; nothing to poll for.
	if session.Status.IsTerminal() {
		purchase, err := s.purchaseRepo.FindByID(ctx, session.PurchaseID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading purchase")
		}
		return &ConfirmResult{Session: *session, Purchase: purchase, Settled: true}, nil
	}

	if s.poller == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation poller not configured")
	}

	gatewayResult, err := s.poller.Poll(ctx, sessionID.String())
	if err != nil {
		return nil, err
	}
	if gatewayResult == nil {
		// Gateway still pending after the bounded window. The webhook or a
		// later confirm attempt finishes the job.
		purchase, err := s.purchaseRepo.FindByID(ctx, session.PurchaseID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading purchase")
		}
		return &ConfirmResult{Session: *session, Purchase: purchase, Settled: false}, nil
	}

	outcome, err := s.ApplyGatewayResult(ctx, sessionID, gatewayResult)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Session: outcome.Session, Purchase: outcome.Purchase, Settled: true}, nil
}

// loadSession reads a session and its purchase, optionally inside a tx.
func (s *service) loadSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*models.PaymentSession, *models.Purchase, error) {
	repo := s.repo
	purchaseRepo := s.purchaseRepo
	if tx != nil {
		repo = repo.WithTx(tx)
		purchaseRepo = purchaseRepo.WithTx(tx)
	}

	session, err := repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment session not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment session")
	}

	purchase, err := purchaseRepo.FindByID(ctx, session.PurchaseID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading purchase for session")
	}
	return session, purchase, nil
}

func sessionStatusFor(status gateway.Status) (enums.PaymentSessionStatus, error) {
	switch status {
	case gateway.StatusPaid:
		return enums.PaymentSessionStatusDone, nil
	case gateway.StatusFailed:
		return enums.PaymentSessionStatusFailed, nil
	case gateway.StatusCancelled:
		return enums.PaymentSessionStatusCancelled, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("gateway status %q is not terminal", status))
}
