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
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/core/services"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// --- Mock RateHistoryRepository ---
type MockRateHistoryRepository struct {
	mock.Mock
}

func (m *MockRateHistoryRepository) SaveRateHistoryEntry(ctx context.Context, entry domain.RateHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRateHistoryRepository) ListRateHistory(ctx context.Context, companyID, currencyID string, limit int, nextToken string) ([]domain.RateHistoryEntry, string, error) {
	args := m.Called(ctx, companyID, currencyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.RateHistoryEntry), args.String(1), args.Error(2)
}

func (m *MockRateHistoryRepository) ListRateHistoryInRange(ctx context.Context, companyID, currencyID string, from, to time.Time) ([]domain.RateHistoryEntry, error) {
	args := m.Called(ctx, companyID, currencyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateHistoryEntry), args.Error(1)
}

func (m *MockRateHistoryRepository) FindRateAt(ctx context.Context, companyID, currencyID string, at time.Time) (*domain.RateHistoryEntry, error) {
	args := m.Called(ctx, companyID, currencyID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateHistoryEntry), args.Error(1)
}

// --- Test Suite ---
type RateHistoryServiceTestSuite struct {
	suite.Suite
	mockCurrencyRepo *MockCurrencyRepository
	mockHistoryRepo  *MockRateHistoryRepository
	service          portssvc.RateHistorySvcFacade
	companyID        string
	currencyID       string
}

func (suite *RateHistoryServiceTestSuite) SetupTest() {
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockHistoryRepo = new(MockRateHistoryRepository)
	suite.service = services.NewRateHistoryService(suite.mockCurrencyRepo, suite.mockHistoryRepo, nil)
	suite.companyID = uuid.NewString()
	suite.currencyID = uuid.NewString()
}

// --- Test Cases ---

func (suite *RateHistoryServiceTestSuite) TestUpdateRate_RecordsHistory() {
	ctx := context.Background()
	updaterUserID := uuid.NewString()
	oldRate := decimal.RequireFromString("36.50")
	newRate := decimal.RequireFromString("37.00")

	current := &domain.Currency{
		CurrencyID:   suite.currencyID,
		CompanyID:    suite.companyID,
		Code:         "USD",
		ExchangeRate: oldRate,
		IsActive:     true,
	}
	updated := &domain.Currency{
		CurrencyID:   suite.currencyID,
		CompanyID:    suite.companyID,
		Code:         "USD",
		ExchangeRate: newRate,
		IsActive:     true,
	}

	suite.mockCurrencyRepo.On("FindCurrencyByID", ctx, suite.companyID, suite.currencyID).Return(current, nil).Once()
	suite.mockCurrencyRepo.On("UpdateRateWithHistory", ctx, suite.companyID, suite.currencyID, newRate, mock.MatchedBy(func(e domain.RateHistoryEntry) bool {
		if !e.OldRate.Equal(oldRate) || !e.NewRate.Equal(newRate) {
			return false
		}
		if !e.Difference.Equal(decimal.RequireFromString("0.50")) {
			return false
		}
		return e.VariationPercent != nil && e.VariationPercent.Equal(decimal.RequireFromString("1.3699"))
	})).Return(nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByID", ctx, suite.companyID, suite.currencyID).Return(updated, nil).Once()

	req := dto.UpdateRateRequest{Rate: newRate, Source: "admin-ui", Reason: "weekly adjustment"}
	currency, entry, err := suite.service.UpdateRate(ctx, suite.companyID, suite.currencyID, req, updaterUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(currency)
	suite.Require().NotNil(entry)
	suite.True(currency.ExchangeRate.Equal(newRate))
	suite.Equal(domain.RateChangeManual, entry.ChangeKind)
	suite.Equal(updaterUserID, entry.ChangedBy)
	suite.NotEmpty(entry.HistoryID)
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *RateHistoryServiceTestSuite) TestUpdateRate_ZeroOldRateHasNoVariation() {
	ctx := context.Background()
	newRate := decimal.NewFromInt(10)
	current := &domain.Currency{CurrencyID: suite.currencyID, Code: "ZZZ", ExchangeRate: decimal.Zero, IsActive: true}
	updated := &domain.Currency{CurrencyID: suite.currencyID, Code: "ZZZ", ExchangeRate: newRate, IsActive: true}

	suite.mockCurrencyRepo.On("FindCurrencyByID", ctx, suite.companyID, suite.currencyID).Return(current, nil).Once()
	suite.mockCurrencyRepo.On("UpdateRateWithHistory", ctx, suite.companyID, suite.currencyID, newRate, mock.MatchedBy(func(e domain.RateHistoryEntry) bool {
		return e.VariationPercent == nil
	})).Return(nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByID", ctx, suite.companyID, suite.currencyID).Return(updated, nil).Once()

	_, entry, err := suite.service.UpdateRate(ctx, suite.companyID, suite.currencyID, dto.UpdateRateRequest{Rate: newRate}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Nil(entry.VariationPercent)
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *RateHistoryServiceTestSuite) TestUpdateRate_RejectsBaseCurrency() {
	ctx := context.Background()
	base := &domain.Currency{CurrencyID: suite.currencyID, Code: "VES", IsBase: true, ExchangeRate: decimal.NewFromInt(1)}
	suite.mockCurrencyRepo.On("FindCurrencyByID", ctx, suite.companyID, suite.currencyID).Return(base, nil).Once()

	_, _, err := suite.service.UpdateRate(ctx, suite.companyID, suite.currencyID, dto.UpdateRateRequest{Rate: decimal.NewFromInt(2)}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "UpdateRateWithHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RateHistoryServiceTestSuite) TestUpdateRate_RejectsNonPositiveRate() {
	ctx := context.Background()
	_, _, err := suite.service.UpdateRate(ctx, suite.companyID, suite.currencyID, dto.UpdateRateRequest{Rate: decimal.Zero}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RateHistoryServiceTestSuite) TestListRateHistory_ClampsLimit() {
	ctx := context.Background()
	entries := []domain.RateHistoryEntry{{HistoryID: uuid.NewString()}}

	suite.mockHistoryRepo.On("ListRateHistory", ctx, suite.companyID, suite.currencyID, 50, "").Return(entries, "", nil).Once()

	result, token, err := suite.service.ListRateHistory(ctx, suite.companyID, suite.currencyID, 0, "")

	suite.Require().NoError(err)
	suite.Len(result, 1)
	suite.Empty(token)
	suite.mockHistoryRepo.AssertExpectations(suite.T())
}

func (suite *RateHistoryServiceTestSuite) TestGetRateAt_BeforeHistoryStartsIsNil() {
	ctx := context.Background()
	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.mockHistoryRepo.On("FindRateAt", ctx, suite.companyID, suite.currencyID, at).Return(nil, nil).Once()

	entry, err := suite.service.GetRateAt(ctx, suite.companyID, suite.currencyID, at)

	suite.Require().NoError(err)
	suite.Nil(entry)
}

func (suite *RateHistoryServiceTestSuite) TestGetCurrencyStatistics() {
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	currency := &domain.Currency{
		CurrencyID:   suite.currencyID,
		Code:         "USD",
		Name:         "US Dollar",
		ExchangeRate: decimal.RequireFromString("37.00"),
	}

	v1 := decimal.RequireFromString("1.3699")
	v2 := decimal.RequireFromString("-0.5000")
	entries := []domain.RateHistoryEntry{
		{HistoryID: "h1", VariationPercent: &v1, ChangedAt: from.AddDate(0, 0, 1)},
		{HistoryID: "h2", VariationPercent: &v2, ChangedAt: from.AddDate(0, 0, 2)},
	}

	suite.mockCurrencyRepo.On("FindCurrencyByID", ctx, suite.companyID, suite.currencyID).Return(currency, nil).Once()
	suite.mockHistoryRepo.On("ListRateHistoryInRange", ctx, suite.companyID, suite.currencyID, from, to).Return(entries, nil).Once()

	stats, err := suite.service.GetCurrencyStatistics(ctx, suite.companyID, suite.currencyID, from, to)

	suite.Require().NoError(err)
	suite.Equal(2, stats.TotalChanges)
	suite.Equal("h1", stats.FirstChange.HistoryID)
	suite.Equal("h2", stats.LastChange.HistoryID)
	suite.True(stats.MaxVariationPct.Equal(v1))
	suite.True(stats.MinVariationPct.Equal(v2))
	expectedAvg := v1.Add(v2).DivRound(decimal.NewFromInt(2), 4)
	suite.True(stats.AvgVariationPct.Equal(expectedAvg))
}

func TestRateHistoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateHistoryServiceTestSuite))
}
