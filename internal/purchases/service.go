package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seatrelay/seatrelay-backend/internal/listings"
	"github.com/seatrelay/seatrelay-backend/internal/notifications"
	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
	pkgerrors "github.com/seatrelay/seatrelay-backend/pkg/errors"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
	"github.com/seatrelay/seatrelay-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service guards every purchase status change.
type Service interface {
	Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	// TransitionTx applies a transition inside an existing transaction so
	// other writers can commit atomically with the status change.
	TransitionTx(ctx context.Context, tx *gorm.DB, input TransitionInput) (*TransitionResult, error)
	GetDetail(ctx context.Context, orderNumber string, requesterID uuid.UUID) (*PurchaseDetail, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Purchase, error)
}

// TransitionInput captures one status change request. System is set only by
// internal reconciliation writers, never from a client value.
type TransitionInput struct {
	OrderNumber string
	Target      enums.PurchaseStatus
	ActorUserID uuid.UUID
	System      bool
}

// TransitionResult reports the ledger row after the request. Changed is
// false when the row already held the target status.
type TransitionResult struct {
	Purchase models.Purchase
	Changed  bool
}

// FeePolicy tunes the settlement fee applied on confirmation.
type FeePolicy struct {
	Percent  int
	DueAfter time.Duration
}

type transitionKey struct {
	from enums.PurchaseStatus
	to   enums.PurchaseStatus
}

// transitionRules is the single source of truth for which actor may drive
// each step of the purchase lifecycle.
var transitionRules = map[transitionKey][]enums.ActorRole{
	{enums.PurchaseStatusPending, enums.PurchaseStatusProcessing}:   {enums.ActorRoleSeller},
	{enums.PurchaseStatusProcessing, enums.PurchaseStatusCompleted}: {enums.ActorRoleSeller},
	{enums.PurchaseStatusCompleted, enums.PurchaseStatusConfirmed}:  {enums.ActorRoleBuyer, enums.ActorRoleSeller},
	{enums.PurchaseStatusPending, enums.PurchaseStatusCancelled}:    {enums.ActorRoleSystem},
}

type service struct {
	repo      Repository
	listings  listings.Repository
	notifs    notifications.Repository
	tx        txRunner
	logg      *logger.Logger
	metrics   *metrics.PaymentMetrics
	feePolicy FeePolicy
	now       func() time.Time
}

// NewService builds the purchase transition guard with its dependencies.
func NewService(
	repo Repository,
	listingRepo listings.Repository,
	notifRepo notifications.Repository,
	tx txRunner,
	logg *logger.Logger,
	paymentMetrics *metrics.PaymentMetrics,
	feePolicy FeePolicy,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if listingRepo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if notifRepo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if feePolicy.Percent <= 0 {
		feePolicy.Percent = 10
	}
	if feePolicy.DueAfter <= 0 {
		feePolicy.DueAfter = 24 * time.Hour
	}
	return &service{
		repo:      repo,
		listings:  listingRepo,
		notifs:    notifRepo,
		tx:        tx,
		logg:      logg,
		metrics:   paymentMetrics,
		feePolicy: feePolicy,
		now:       time.Now,
	}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.TransitionTx(ctx, tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) TransitionTx(ctx context.Context, tx *gorm.DB, input TransitionInput) (*TransitionResult, error) {
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", input.Target))
	}

	ctx = s.logg.WithOrderNumber(ctx, input.OrderNumber)
	repo := s.repo.WithTx(tx)

	purchase, err := repo.FindByOrderNumber(ctx, input.OrderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading purchase")
	}

	role, err := resolveRole(purchase, input)
	if err != nil {
		return nil, err
	}

	// Re-submitting the current status is an idempotent success.
	if purchase.Status == input.Target {
		return &TransitionResult{Purchase: *purchase, Changed: false}, nil
	}

	from := purchase.Status
	rule, ok := transitionRules[transitionKey{from, input.Target}]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move purchase from %s to %s", from, input.Target)).
			WithDetails(map[string]string{"from": from.String(), "to": input.Target.String()})
	}
	if !roleAllowed(rule, role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "actor may not perform this transition")
	}

	swapped, err := repo.CompareAndSwapStatus(ctx, input.OrderNumber, from, input.Target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating purchase status")
	}
	if !swapped {
		// Lost the race. If the winner applied the same target the
		// request already succeeded from the caller's point of view.
		current, err := repo.FindByOrderNumber(ctx, input.OrderNumber)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-reading purchase")
		}
		if current.Status == input.Target {
			return &TransitionResult{Purchase: *current, Changed: false}, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("purchase moved to %s concurrently", current.Status)).
			WithDetails(map[string]string{"from": from.String(), "to": input.Target.String(), "current": current.Status.String()})
	}

	if input.Target == enums.PurchaseStatusConfirmed {
		if err := s.settleConfirmation(ctx, tx, repo, purchase); err != nil {
			return nil, err
		}
	}

	s.notifyTransition(ctx, tx, purchase, input.Target)

	updated, err := repo.FindByOrderNumber(ctx, input.OrderNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-reading purchase")
	}

	s.metrics.IncTransition(from.String(), input.Target.String())
	s.logg.Info(s.logg.WithField(ctx, "status", input.Target.String()), "purchase transition applied")
	return &TransitionResult{Purchase: *updated, Changed: true}, nil
}

// settleConfirmation runs the side effects that commit together with the
// CONFIRMED status: the one-time settlement fee and the listing sale.
func (s *service) settleConfirmation(ctx context.Context, tx *gorm.DB, repo Repository, purchase *models.Purchase) error {
	fee := ComputeFee(purchase.TotalPrice, s.feePolicy.Percent, s.feePolicy.DueAfter, s.now())
	if _, err := repo.SetFee(ctx, purchase.OrderNumber, fee.Amount, fee.DueAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording settlement fee")
	}

	if _, err := s.listings.WithTx(tx).MarkSold(ctx, purchase.ListingID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking listing sold")
	}
	return nil
}

// notifyTransition records the counterparty notification. Failure is logged
// and swallowed so a broken inbox cannot roll back a committed transition.
func (s *service) notifyTransition(ctx context.Context, tx *gorm.DB, purchase *models.Purchase, target enums.PurchaseStatus) {
	title := ""
	if listing, err := s.listings.WithTx(tx).FindByID(ctx, purchase.ListingID); err == nil {
		title = listing.Title
	}

	notification := notifications.ForTransition(target, notifications.TransitionContext{
		BuyerID:      purchase.BuyerID,
		SellerID:     purchase.SellerID,
		ListingID:    purchase.ListingID,
		ListingTitle: title,
	})
	if notification == nil {
		return
	}

	if err := s.notifs.WithTx(tx).Create(ctx, notification); err != nil {
		s.logg.Error(ctx, "creating transition notification", err)
	}
}

func (s *service) GetDetail(ctx context.Context, orderNumber string, requesterID uuid.UUID) (*PurchaseDetail, error) {
	detail, err := s.repo.FindDetailByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading purchase detail")
	}
	if detail.Purchase.BuyerID != requesterID && detail.Purchase.SellerID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "purchase belongs to another user")
	}
	return detail, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Purchase, error) {
	rows, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing purchases")
	}
	return rows, nil
}

func resolveRole(purchase *models.Purchase, input TransitionInput) (enums.ActorRole, error) {
	if input.System {
		return enums.ActorRoleSystem, nil
	}
	switch input.ActorUserID {
	case purchase.SellerID:
		return enums.ActorRoleSeller, nil
	case purchase.BuyerID:
		return enums.ActorRoleBuyer, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeForbidden, "purchase belongs to another user")
}

func roleAllowed(allowed []enums.ActorRole, role enums.ActorRole) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}
