package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskmarket/internal/common"
	"taskmarket/internal/models"
	"taskmarket/internal/syncer"
)

// PaymentService records completed checkouts. The checkout itself happens in
// an external gateway; Record stores its reference and credits the permits
// it bought.
type PaymentService interface {
	Record(ctx context.Context, accountID int64, reference string, permits int, amountCents int64) (*models.Payment, error)
	ListForAccount(ctx context.Context, accountID int64) ([]models.Payment, error)
}

type paymentService struct {
	engine   *syncer.Engine
	accounts AccountService
}

func NewPaymentService(engine *syncer.Engine, accounts AccountService) PaymentService {
	return &paymentService{engine: engine, accounts: accounts}
}

func (s *paymentService) Record(ctx context.Context, accountID int64, reference string, permits int, amountCents int64) (*models.Payment, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("gateway reference required: %w", common.ErrValidation)
	}
	if permits <= 0 {
		return nil, fmt.Errorf("permit count must be positive: %w", common.ErrValidation)
	}

	// A reference already recorded means a duplicate gateway callback.
	existing, err := s.ListForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.Reference == reference {
			return nil, fmt.Errorf("payment %s already recorded: %w", reference, common.ErrValidation)
		}
	}

	payment := &models.Payment{
		AccountID:   accountID,
		Reference:   reference,
		Permits:     permits,
		AmountCents: amountCents,
		CreatedAt:   time.Now().UTC(),
	}
	doc, err := models.ToDoc(payment)
	if err != nil {
		return nil, err
	}
	created, err := s.engine.Create(ctx, models.CollectionPayments, doc)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.AddPermits(ctx, accountID, permits); err != nil {
		return nil, err
	}

	out := &models.Payment{}
	if err := models.FromDoc(created, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *paymentService) ListForAccount(ctx context.Context, accountID int64) ([]models.Payment, error) {
	docs, err := s.engine.List(ctx, models.CollectionPayments)
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	for _, doc := range docs {
		var p models.Payment
		if err := models.FromDoc(doc, &p); err != nil {
			return nil, err
		}
		if p.AccountID == accountID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}
