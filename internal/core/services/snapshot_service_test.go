package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/core/services"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// --- Mock SnapshotRepository ---
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.TransactionSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) FindSnapshotByID(ctx context.Context, companyID, snapshotID string) (*domain.TransactionSnapshot, error) {
	args := m.Called(ctx, companyID, snapshotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) ListSnapshotsByTransaction(ctx context.Context, companyID, transactionKind, transactionID string) ([]domain.TransactionSnapshot, error) {
	args := m.Called(ctx, companyID, transactionKind, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionSnapshot), args.Error(1)
}

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByID(ctx context.Context, companyID, currencyID string) (*domain.Currency, error) {
	args := m.Called(ctx, companyID, currencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, companyID, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, companyID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) GetBaseCurrency(ctx context.Context, companyID string) (*domain.Currency, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ListCurrencies(ctx context.Context, companyID string, activeOnly bool) ([]domain.Currency, error) {
	args := m.Called(ctx, companyID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) CreateCurrency(ctx context.Context, companyID string, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) UpdateCurrency(ctx context.Context, companyID, currencyID string, req dto.UpdateCurrencyRequest, updaterUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, companyID, currencyID, req, updaterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) DeactivateCurrency(ctx context.Context, companyID, currencyID, updaterUserID string) error {
	args := m.Called(ctx, companyID, currencyID, updaterUserID)
	return args.Error(0)
}

func (m *MockCurrencyService) SetBaseCurrency(ctx context.Context, companyID, currencyID, updaterUserID string) error {
	args := m.Called(ctx, companyID, currencyID, updaterUserID)
	return args.Error(0)
}

func (m *MockCurrencyService) CalculateIGTF(ctx context.Context, companyID string, req dto.IGTFCalculationRequest) (*domain.IGTFResult, error) {
	args := m.Called(ctx, companyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IGTFResult), args.Error(1)
}

// --- Mock ConversionService ---
type MockConversionService struct {
	mock.Mock
}

func (m *MockConversionService) Convert(ctx context.Context, companyID string, req dto.ConvertRequest) (*domain.ConversionResult, error) {
	args := m.Called(ctx, companyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionResult), args.Error(1)
}

func (m *MockConversionService) GetRate(ctx context.Context, fromCurrency, toCurrency string) (*providers.Rate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.Rate), args.Error(1)
}

func (m *MockConversionService) RefreshProviders(ctx context.Context) map[string]error {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]error)
}

func (m *MockConversionService) ProvidersStatus(ctx context.Context) []providers.ProviderStatus {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]providers.ProviderStatus)
}

func (m *MockConversionService) CacheStats() (int64, int64) {
	args := m.Called()
	return args.Get(0).(int64), args.Get(1).(int64)
}

var _ portssvc.ConversionSvcFacade = (*MockConversionService)(nil)

// --- Mock TaxCalculator ---
type MockTaxCalculator struct {
	mock.Mock
}

func (m *MockTaxCalculator) CalculateTax(ctx context.Context, companyID string, kind domain.TaxKind, amount decimal.Decimal, currencyCode string) (*domain.TaxCalculation, error) {
	args := m.Called(ctx, companyID, kind, amount, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxCalculation), args.Error(1)
}

func (m *MockTaxCalculator) CalculateAllTaxes(ctx context.Context, companyID string, amount decimal.Decimal, currencyCode string) ([]domain.TaxCalculation, error) {
	args := m.Called(ctx, companyID, amount, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxCalculation), args.Error(1)
}

// --- Test Suite ---
type SnapshotServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockSnapshotRepository
	mockCurrency   *MockCurrencyService
	mockConversion *MockConversionService
	mockTaxes      *MockTaxCalculator
	service        portssvc.SnapshotSvcFacade
	companyID      string
}

func (suite *SnapshotServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockSnapshotRepository)
	suite.mockCurrency = new(MockCurrencyService)
	suite.mockConversion = new(MockConversionService)
	suite.mockTaxes = new(MockTaxCalculator)
	suite.service = services.NewSnapshotService(suite.mockRepo, suite.mockCurrency, suite.mockConversion, suite.mockTaxes)
	suite.companyID = uuid.NewString()
}

// --- Test Cases ---

func (suite *SnapshotServiceTestSuite) TestCreateSnapshot_FreezesRateTaxesAndIGTF() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	amount := decimal.NewFromInt(1500)
	rate := decimal.RequireFromString("36.50")

	base := &domain.Currency{Code: "VES", IsBase: true}
	suite.mockCurrency.On("GetBaseCurrency", ctx, suite.companyID).Return(base, nil).Once()

	suite.mockConversion.On("Convert", ctx, suite.companyID, dto.ConvertRequest{
		Amount:       amount,
		FromCurrency: "USD",
		ToCurrency:   "VES",
	}).Return(&domain.ConversionResult{
		OriginalAmount:   amount,
		OriginalCurrency: "USD",
		ConvertedAmount:  decimal.RequireFromString("54750.00"),
		TargetCurrency:   "VES",
		RateUsed:         rate,
		Provider:         "bcv",
		ConvertedAt:      time.Now(),
	}, nil).Once()

	ivaRuleID := uuid.NewString()
	suite.mockTaxes.On("CalculateAllTaxes", ctx, suite.companyID, amount, "USD").Return([]domain.TaxCalculation{
		{
			TaxableAmount: amount,
			Kind:          domain.TaxIVA,
			RuleID:        ivaRuleID,
			Rate:          decimal.NewFromInt(16),
			TaxAmount:     decimal.RequireFromString("240.00"),
		},
	}, nil).Once()

	suite.mockCurrency.On("CalculateIGTF", ctx, suite.companyID, dto.IGTFCalculationRequest{
		Amount:          amount,
		CurrencyCode:    "USD",
		PaymentMethod:   "cash",
		TransactionKind: "invoice",
	}).Return(&domain.IGTFResult{
		Amount:  decimal.RequireFromString("45.00"),
		Applied: true,
		Rate:    decimal.NewFromInt(3),
		Reason:  "foreign currency payment above threshold",
	}, nil).Once()

	suite.mockRepo.On("SaveSnapshot", ctx, mock.MatchedBy(func(s domain.TransactionSnapshot) bool {
		return s.IsFinalized && s.CompanyID == suite.companyID && len(s.Taxes) == 2
	})).Return(nil).Once()

	req := dto.CreateSnapshotRequest{
		TransactionKind: "invoice",
		TransactionID:   uuid.NewString(),
		Amount:          amount,
		CurrencyCode:    "USD",
		PaymentMethod:   "cash",
	}
	snapshot, err := suite.service.CreateSnapshot(ctx, suite.companyID, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(snapshot)
	suite.True(snapshot.IsFinalized)
	suite.True(snapshot.ExchangeRate.Equal(rate))
	suite.Equal("bcv", snapshot.ExchangeRateProvider)
	suite.True(snapshot.PaymentAmount.Amount.Equal(amount))
	suite.Equal("USD", snapshot.PaymentAmount.Currency)
	suite.True(snapshot.BaseAmount.Amount.Equal(decimal.RequireFromString("54750.00")))
	suite.Equal("VES", snapshot.BaseAmount.Currency)

	iva, ok := snapshot.Taxes[domain.TaxIVA]
	suite.Require().True(ok)
	suite.Equal(ivaRuleID, iva.RuleID)
	suite.True(iva.TaxAmount.Equal(decimal.RequireFromString("240.00")))

	igtf, ok := snapshot.Taxes[domain.TaxIGTF]
	suite.Require().True(ok)
	suite.True(igtf.TaxAmount.Equal(decimal.RequireFromString("45.00")))

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCurrency.AssertExpectations(suite.T())
	suite.mockConversion.AssertExpectations(suite.T())
	suite.mockTaxes.AssertExpectations(suite.T())
}

func (suite *SnapshotServiceTestSuite) TestCreateSnapshot_IGTFNotAppliedLeavesNoLine() {
	ctx := context.Background()
	amount := decimal.NewFromInt(100)

	base := &domain.Currency{Code: "VES", IsBase: true}
	suite.mockCurrency.On("GetBaseCurrency", ctx, suite.companyID).Return(base, nil).Once()
	suite.mockConversion.On("Convert", ctx, suite.companyID, mock.AnythingOfType("dto.ConvertRequest")).Return(&domain.ConversionResult{
		ConvertedAmount: decimal.RequireFromString("100.00"),
		TargetCurrency:  "VES",
		RateUsed:        decimal.NewFromInt(1),
		Provider:        "direct",
		ConvertedAt:     time.Now(),
	}, nil).Once()
	suite.mockTaxes.On("CalculateAllTaxes", ctx, suite.companyID, amount, "VES").Return([]domain.TaxCalculation{}, nil).Once()
	suite.mockCurrency.On("CalculateIGTF", ctx, suite.companyID, mock.AnythingOfType("dto.IGTFCalculationRequest")).Return(&domain.IGTFResult{
		Amount:  decimal.Zero,
		Applied: false,
		Reason:  "base currency payments are outside IGTF scope",
	}, nil).Once()
	suite.mockRepo.On("SaveSnapshot", ctx, mock.AnythingOfType("domain.TransactionSnapshot")).Return(nil).Once()

	req := dto.CreateSnapshotRequest{
		TransactionKind: "invoice",
		TransactionID:   uuid.NewString(),
		Amount:          amount,
		CurrencyCode:    "VES",
	}
	snapshot, err := suite.service.CreateSnapshot(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Empty(snapshot.Taxes)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *SnapshotServiceTestSuite) TestCreateSnapshot_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateSnapshotRequest{TransactionKind: "invoice", TransactionID: uuid.NewString(), Amount: decimal.Zero, CurrencyCode: "USD"}

	snapshot, err := suite.service.CreateSnapshot(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(snapshot)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SnapshotServiceTestSuite) TestGetSnapshotByID_NotFound() {
	ctx := context.Background()
	snapshotID := uuid.NewString()
	suite.mockRepo.On("FindSnapshotByID", ctx, suite.companyID, snapshotID).Return(nil, apperrors.ErrNotFound).Once()

	snapshot, err := suite.service.GetSnapshotByID(ctx, suite.companyID, snapshotID)

	suite.Require().Error(err)
	suite.Nil(snapshot)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SnapshotServiceTestSuite) TestListSnapshotsByTransaction() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	stored := []domain.TransactionSnapshot{{SnapshotID: uuid.NewString(), IsFinalized: true}}
	suite.mockRepo.On("ListSnapshotsByTransaction", ctx, suite.companyID, "invoice", transactionID).Return(stored, nil).Once()

	snapshots, err := suite.service.ListSnapshotsByTransaction(ctx, suite.companyID, "invoice", transactionID)

	suite.Require().NoError(err)
	suite.Len(snapshots, 1)
	suite.True(snapshots[0].IsFinalized)
}

func TestSnapshotServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotServiceTestSuite))
}
