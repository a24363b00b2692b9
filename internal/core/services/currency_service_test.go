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
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/core/services"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByID(ctx context.Context, companyID, currencyID string) (*domain.Currency, error) {
	args := m.Called(ctx, companyID, currencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, companyID, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, companyID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindBaseCurrency(ctx context.Context, companyID string) (*domain.Currency, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context, companyID string, activeOnly bool) ([]domain.Currency, error) {
	args := m.Called(ctx, companyID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) DeactivateCurrency(ctx context.Context, companyID, currencyID, updatedBy string) error {
	args := m.Called(ctx, companyID, currencyID, updatedBy)
	return args.Error(0)
}

func (m *MockCurrencyRepository) SetBaseCurrency(ctx context.Context, companyID, currencyID, updatedBy string) error {
	args := m.Called(ctx, companyID, currencyID, updatedBy)
	return args.Error(0)
}

func (m *MockCurrencyRepository) UpdateRateWithHistory(ctx context.Context, companyID, currencyID string, newRate decimal.Decimal, entry domain.RateHistoryEntry) error {
	args := m.Called(ctx, companyID, currencyID, newRate, entry)
	return args.Error(0)
}

// --- Mock IGTFConfigRepository ---
type MockIGTFConfigRepository struct {
	mock.Mock
}

func (m *MockIGTFConfigRepository) FindIGTFConfig(ctx context.Context, companyID, currencyID string) (*domain.IGTFConfig, error) {
	args := m.Called(ctx, companyID, currencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IGTFConfig), args.Error(1)
}

func (m *MockIGTFConfigRepository) SaveIGTFConfig(ctx context.Context, config domain.IGTFConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

var _ portsrepo.IGTFConfigRepositoryFacade = (*MockIGTFConfigRepository)(nil)

// --- Test Suite ---
type CurrencyServiceTestSuite struct {
	suite.Suite
	mockRepo     *MockCurrencyRepository
	mockIGTFRepo *MockIGTFConfigRepository
	service      portssvc.CurrencySvcFacade
	companyID    string
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.mockIGTFRepo = new(MockIGTFConfigRepository)
	suite.service = services.NewCurrencyService(
		suite.mockRepo,
		suite.mockIGTFRepo,
		[]string{"USD", "EUR", "USDT"},
		[]string{"COP", "ARS"},
	)
	suite.companyID = uuid.NewString()
}

// --- Test Cases ---

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_StrongCurrency() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateCurrencyRequest{
		Code:         "USD",
		Name:         "US Dollar",
		Symbol:       "$",
		ExchangeRate: decimal.RequireFromString("36.50"),
	}

	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.Code == "USD" && c.CreatedBy == creatorUserID && c.IsActive
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, suite.companyID, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(currency)
	suite.Equal("USD", currency.Code)
	suite.False(currency.IsNonStandard)
	suite.Equal(domain.ConversionDirect, currency.ConversionMethod)
	suite.Require().NotNil(currency.ConversionFactor)
	expectedFactor := decimal.NewFromInt(1).DivRound(decimal.RequireFromString("36.50"), 10)
	suite.True(currency.ConversionFactor.Equal(expectedFactor))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_WeakCurrencyInverse() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{
		Code:         "COP",
		Name:         "Colombian Peso",
		Symbol:       "$",
		ExchangeRate: decimal.RequireFromString("0.0091"),
	}

	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "COP").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.ConversionInverse, currency.ConversionMethod)
	suite.Require().NotNil(currency.ConversionFactor)
	suite.True(currency.ConversionFactor.Equal(req.ExchangeRate))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_NonStandardCode() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{
		Code:         "ZZZ",
		Name:         "Loyalty Points",
		Symbol:       "pt",
		ExchangeRate: decimal.NewFromInt(5),
	}

	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "ZZZ").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(currency.IsNonStandard)
	suite.Equal(domain.ConversionCross, currency.ConversionMethod)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Duplicate() {
	ctx := context.Background()
	existing := &domain.Currency{Code: "USD"}
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(existing, nil).Once()

	req := dto.CreateCurrencyRequest{Code: "USD", Name: "US Dollar", Symbol: "$", ExchangeRate: decimal.NewFromInt(36)}
	currency, err := suite.service.CreateCurrency(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_InvalidCode() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{Code: "US", Name: "Broken", Symbol: "?", ExchangeRate: decimal.NewFromInt(1)}

	currency, err := suite.service.CreateCurrency(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_SecondBaseRejected() {
	ctx := context.Background()
	existingBase := &domain.Currency{Code: "VES", IsBase: true}

	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindBaseCurrency", ctx, suite.companyID).Return(existingBase, nil).Once()

	req := dto.CreateCurrencyRequest{Code: "USD", Name: "US Dollar", Symbol: "$", IsBase: true}
	currency, err := suite.service.CreateCurrency(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_BaseGetsRateOne() {
	ctx := context.Background()

	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "VES").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindBaseCurrency", ctx, suite.companyID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	req := dto.CreateCurrencyRequest{
		Code:         "VES",
		Name:         "Bolívar",
		Symbol:       "Bs.",
		IsBase:       true,
		ExchangeRate: decimal.NewFromInt(99),
	}
	currency, err := suite.service.CreateCurrency(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(currency.ExchangeRate.Equal(decimal.NewFromInt(1)))
	suite.Nil(currency.ConversionFactor)
	suite.Equal(domain.ConversionUndefined, currency.ConversionMethod)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_NonPositiveRate() {
	ctx := context.Background()
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(nil, apperrors.ErrNotFound).Once()

	req := dto.CreateCurrencyRequest{Code: "USD", Name: "US Dollar", Symbol: "$", ExchangeRate: decimal.Zero}
	currency, err := suite.service.CreateCurrency(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyServiceTestSuite) TestUpdateCurrency_CannotDeactivateBase() {
	ctx := context.Background()
	currencyID := uuid.NewString()
	base := &domain.Currency{CurrencyID: currencyID, Code: "VES", IsBase: true, IsActive: true}
	suite.mockRepo.On("FindCurrencyByID", ctx, suite.companyID, currencyID).Return(base, nil).Once()

	inactive := false
	_, err := suite.service.UpdateCurrency(ctx, suite.companyID, currencyID, dto.UpdateCurrencyRequest{IsActive: &inactive}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestDeactivateCurrency_BaseRejected() {
	ctx := context.Background()
	currencyID := uuid.NewString()
	base := &domain.Currency{CurrencyID: currencyID, Code: "VES", IsBase: true, IsActive: true}
	suite.mockRepo.On("FindCurrencyByID", ctx, suite.companyID, currencyID).Return(base, nil).Once()

	err := suite.service.DeactivateCurrency(ctx, suite.companyID, currencyID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestSetBaseCurrency_AlreadyBaseIsNoOp() {
	ctx := context.Background()
	currencyID := uuid.NewString()
	base := &domain.Currency{CurrencyID: currencyID, Code: "VES", IsBase: true, IsActive: true}
	suite.mockRepo.On("FindCurrencyByID", ctx, suite.companyID, currencyID).Return(base, nil).Once()

	err := suite.service.SetBaseCurrency(ctx, suite.companyID, currencyID, uuid.NewString())

	suite.Require().NoError(err)
	suite.mockRepo.AssertNotCalled(suite.T(), "SetBaseCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- IGTF determination ---

func (suite *CurrencyServiceTestSuite) usdCurrency() *domain.Currency {
	return &domain.Currency{
		CurrencyID:    uuid.NewString(),
		CompanyID:     suite.companyID,
		Code:          "USD",
		IsActive:      true,
		AppliesIGTF:   true,
		IGTFRate:      decimal.NewFromInt(3),
		IGTFMinAmount: decimal.NewFromInt(1000),
	}
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_AppliedAboveThreshold() {
	ctx := context.Background()
	usd := suite.usdCurrency()
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(usd, nil).Once()
	suite.mockIGTFRepo.On("FindIGTFConfig", ctx, suite.companyID, usd.CurrencyID).Return(nil, nil).Once()

	req := dto.IGTFCalculationRequest{Amount: decimal.NewFromInt(1500), CurrencyCode: "USD"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().NoError(err)
	suite.True(result.Applied)
	suite.True(result.Amount.Equal(decimal.RequireFromString("45.00")), "expected 45.00, got %s", result.Amount)
	suite.True(result.Rate.Equal(decimal.NewFromInt(3)))
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockIGTFRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_BaseCurrencyNeverTaxed() {
	ctx := context.Background()
	ves := &domain.Currency{
		CurrencyID:  uuid.NewString(),
		Code:        "VES",
		IsBase:      true,
		IsActive:    true,
		AppliesIGTF: true,
		IGTFRate:    decimal.NewFromInt(3),
	}
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "VES").Return(ves, nil).Once()

	req := dto.IGTFCalculationRequest{Amount: decimal.NewFromInt(500), CurrencyCode: "VES"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().NoError(err)
	suite.False(result.Applied)
	suite.True(result.Amount.IsZero())
	suite.mockIGTFRepo.AssertNotCalled(suite.T(), "FindIGTFConfig", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_BelowMinimum() {
	ctx := context.Background()
	usd := suite.usdCurrency()
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(usd, nil).Once()
	suite.mockIGTFRepo.On("FindIGTFConfig", ctx, suite.companyID, usd.CurrencyID).Return(nil, nil).Once()

	req := dto.IGTFCalculationRequest{Amount: decimal.NewFromInt(999), CurrencyCode: "USD"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().NoError(err)
	suite.False(result.Applied)
	suite.True(result.Amount.IsZero())
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_ExemptCurrency() {
	ctx := context.Background()
	usd := suite.usdCurrency()
	usd.IGTFExempt = true
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(usd, nil).Once()

	req := dto.IGTFCalculationRequest{Amount: decimal.NewFromInt(5000), CurrencyCode: "USD"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().NoError(err)
	suite.False(result.Applied)
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_TenantExemptConfig() {
	ctx := context.Background()
	usd := suite.usdCurrency()
	cfg := &domain.IGTFConfig{
		ConfigID:   uuid.NewString(),
		CompanyID:  suite.companyID,
		CurrencyID: usd.CurrencyID,
		IsExempt:   true,
		Rate:       decimal.NewFromInt(3),
	}
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(usd, nil).Once()
	suite.mockIGTFRepo.On("FindIGTFConfig", ctx, suite.companyID, usd.CurrencyID).Return(cfg, nil).Once()

	req := dto.IGTFCalculationRequest{Amount: decimal.NewFromInt(5000), CurrencyCode: "USD"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().NoError(err)
	suite.False(result.Applied)
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_ConfigOverridesRateAndMinimum() {
	ctx := context.Background()
	usd := suite.usdCurrency()
	cfg := &domain.IGTFConfig{
		ConfigID:         uuid.NewString(),
		CompanyID:        suite.companyID,
		CurrencyID:       usd.CurrencyID,
		Rate:             decimal.RequireFromString("2.5"),
		MinAmountForeign: decimal.NewFromInt(200),
	}
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(usd, nil).Once()
	suite.mockIGTFRepo.On("FindIGTFConfig", ctx, suite.companyID, usd.CurrencyID).Return(cfg, nil).Once()

	// 300 is below the currency default minimum but above the config one.
	req := dto.IGTFCalculationRequest{Amount: decimal.NewFromInt(300), CurrencyCode: "USD"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().NoError(err)
	suite.True(result.Applied)
	suite.True(result.Rate.Equal(decimal.RequireFromString("2.5")))
	suite.True(result.Amount.Equal(decimal.RequireFromString("7.50")))
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_ExpiredConfigFallsBackToDefaults() {
	ctx := context.Background()
	usd := suite.usdCurrency()
	lastYear := time.Now().AddDate(-1, 0, 0)
	closed := time.Now().AddDate(0, -1, 0)
	cfg := &domain.IGTFConfig{
		ConfigID:   uuid.NewString(),
		CompanyID:  suite.companyID,
		CurrencyID: usd.CurrencyID,
		Rate:       decimal.NewFromInt(10),
		ValidFrom:  lastYear,
		ValidUntil: &closed,
	}
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(usd, nil).Once()
	suite.mockIGTFRepo.On("FindIGTFConfig", ctx, suite.companyID, usd.CurrencyID).Return(cfg, nil).Once()

	req := dto.IGTFCalculationRequest{Amount: decimal.NewFromInt(1500), CurrencyCode: "USD"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().NoError(err)
	suite.True(result.Applied)
	suite.True(result.Rate.Equal(decimal.NewFromInt(3)))
	suite.True(result.Amount.Equal(decimal.RequireFromString("45.00")))
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_PaymentMethodOutsideScope() {
	ctx := context.Background()
	usd := suite.usdCurrency()
	cfg := &domain.IGTFConfig{
		ConfigID:                 uuid.NewString(),
		CompanyID:                suite.companyID,
		CurrencyID:               usd.CurrencyID,
		Rate:                     decimal.NewFromInt(3),
		ApplicablePaymentMethods: []string{"cash", "wire"},
	}
	suite.mockRepo.On("FindCurrencyByCode", ctx, suite.companyID, "USD").Return(usd, nil).Once()
	suite.mockIGTFRepo.On("FindIGTFConfig", ctx, suite.companyID, usd.CurrencyID).Return(cfg, nil).Once()

	req := dto.IGTFCalculationRequest{Amount: decimal.NewFromInt(5000), CurrencyCode: "USD", PaymentMethod: "national-card"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().NoError(err)
	suite.False(result.Applied)
}

func (suite *CurrencyServiceTestSuite) TestCalculateIGTF_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.IGTFCalculationRequest{Amount: decimal.Zero, CurrencyCode: "USD"}
	result, err := suite.service.CalculateIGTF(ctx, suite.companyID, req)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
