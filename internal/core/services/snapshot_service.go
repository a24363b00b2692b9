package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// SnapshotService freezes the monetary context of business transactions.
// Stored snapshots are immutable: the repository port has no update or
// delete methods, so later rate or rule changes can never alter what a
// transaction recorded.
type SnapshotService struct {
	BaseService
	snapshotRepo portsrepo.SnapshotRepositoryFacade
	currencySvc  portssvc.CurrencySvcFacade
	conversion   portssvc.ConversionSvcFacade
	taxes        portssvc.TaxCalculatorSvc
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(snapshotRepo portsrepo.SnapshotRepositoryFacade, currencySvc portssvc.CurrencySvcFacade, conversion portssvc.ConversionSvcFacade, taxes portssvc.TaxCalculatorSvc) *SnapshotService {
	return &SnapshotService{
		snapshotRepo: snapshotRepo,
		currencySvc:  currencySvc,
		conversion:   conversion,
		taxes:        taxes,
	}
}

// CreateSnapshot converts the payment into the base currency, computes the
// applicable taxes, and persists the frozen record.
func (s *SnapshotService) CreateSnapshot(ctx context.Context, companyID string, req dto.CreateSnapshotRequest, creatorUserID string) (*domain.TransactionSnapshot, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	base, err := s.currencySvc.GetBaseCurrency(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base currency for snapshot: %w", err)
	}

	paymentCode := strings.ToUpper(req.CurrencyCode)
	conv, err := s.conversion.Convert(ctx, companyID, dto.ConvertRequest{
		Amount:       req.Amount,
		FromCurrency: paymentCode,
		ToCurrency:   base.Code,
	})
	if err != nil {
		return nil, err
	}

	calcs, err := s.taxes.CalculateAllTaxes(ctx, companyID, req.Amount, paymentCode)
	if err != nil {
		return nil, err
	}

	taxes := make(map[domain.TaxKind]domain.TaxLine, len(calcs))
	for _, calc := range calcs {
		taxes[calc.Kind] = domain.TaxLine{
			Rate:          calc.Rate,
			TaxableAmount: calc.TaxableAmount,
			TaxAmount:     calc.TaxAmount,
			RuleID:        calc.RuleID,
		}
	}

	// IGTF rides on the payment itself, not on the rule engine.
	igtf, err := s.currencySvc.CalculateIGTF(ctx, companyID, dto.IGTFCalculationRequest{
		Amount:          req.Amount,
		CurrencyCode:    paymentCode,
		PaymentMethod:   req.PaymentMethod,
		TransactionKind: req.TransactionKind,
	})
	if err != nil {
		return nil, err
	}
	if igtf.Applied {
		taxes[domain.TaxIGTF] = domain.TaxLine{
			Rate:          igtf.Rate,
			TaxableAmount: req.Amount,
			TaxAmount:     igtf.Amount,
		}
	}

	snapshot := domain.TransactionSnapshot{
		SnapshotID:           uuid.NewString(),
		CompanyID:            companyID,
		TransactionKind:      req.TransactionKind,
		TransactionID:        req.TransactionID,
		PaymentAmount:        domain.Money{Amount: req.Amount, Currency: paymentCode},
		BaseAmount:           domain.Money{Amount: conv.ConvertedAmount, Currency: base.Code},
		ExchangeRate:         conv.RateUsed,
		ExchangeRateProvider: conv.Provider,
		ExchangeRateDate:     conv.ConvertedAt,
		Taxes:                taxes,
		Metadata:             req.Metadata,
		CreatedAt:            time.Now(),
		CreatedBy:            creatorUserID,
		IsFinalized:          true,
	}

	if err := s.snapshotRepo.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return &snapshot, nil
}

// GetSnapshotByID retrieves a specific snapshot.
func (s *SnapshotService) GetSnapshotByID(ctx context.Context, companyID, snapshotID string) (*domain.TransactionSnapshot, error) {
	snapshot, err := s.snapshotRepo.FindSnapshotByID(ctx, companyID, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot in service: %w", err)
	}
	return snapshot, nil
}

// ListSnapshotsByTransaction retrieves the snapshots recorded for a
// transaction, newest first.
func (s *SnapshotService) ListSnapshotsByTransaction(ctx context.Context, companyID, transactionKind, transactionID string) ([]domain.TransactionSnapshot, error) {
	snapshots, err := s.snapshotRepo.ListSnapshotsByTransaction(ctx, companyID, transactionKind, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots in service: %w", err)
	}
	return snapshots, nil
}
