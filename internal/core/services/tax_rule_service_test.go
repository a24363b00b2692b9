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

// --- Mock TaxRuleRepository ---
type MockTaxRuleRepository struct {
	mock.Mock
}

func (m *MockTaxRuleRepository) SaveTaxRule(ctx context.Context, rule domain.TaxRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockTaxRuleRepository) FindTaxRuleByID(ctx context.Context, companyID, ruleID string) (*domain.TaxRule, error) {
	args := m.Called(ctx, companyID, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxRule), args.Error(1)
}

func (m *MockTaxRuleRepository) ListTaxRules(ctx context.Context, companyID string, kind domain.TaxKind, activeOnly bool) ([]domain.TaxRule, error) {
	args := m.Called(ctx, companyID, kind, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxRule), args.Error(1)
}

func (m *MockTaxRuleRepository) ListActiveTaxKinds(ctx context.Context, companyID string) ([]domain.TaxKind, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxKind), args.Error(1)
}

func (m *MockTaxRuleRepository) UpdateTaxRule(ctx context.Context, rule domain.TaxRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockTaxRuleRepository) DeactivateTaxRule(ctx context.Context, companyID, ruleID, updatedBy string) error {
	args := m.Called(ctx, companyID, ruleID, updatedBy)
	return args.Error(0)
}

// --- Test Suite ---
type TaxRuleServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockTaxRuleRepository
	service   portssvc.TaxRuleSvcFacade
	companyID string
}

func (suite *TaxRuleServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTaxRuleRepository)
	suite.service = services.NewTaxRuleService(suite.mockRepo)
	suite.companyID = uuid.NewString()
}

func activeRule(kind domain.TaxKind, name string, rate string, priority int, sequence int64) domain.TaxRule {
	return domain.TaxRule{
		RuleID:    uuid.NewString(),
		Kind:      kind,
		Name:      name,
		Rate:      decimal.RequireFromString(rate),
		IsActive:  true,
		ValidFrom: time.Now().Add(-24 * time.Hour),
		Priority:  priority,
		Sequence:  sequence,
	}
}

// --- Test Cases ---

func (suite *TaxRuleServiceTestSuite) TestCreateTaxRule_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateTaxRuleRequest{
		Kind:     "iva",
		Name:     "General IVA",
		Rate:     decimal.NewFromInt(16),
		Priority: 10,
	}

	suite.mockRepo.On("SaveTaxRule", ctx, mock.MatchedBy(func(r domain.TaxRule) bool {
		return r.Kind == domain.TaxIVA && r.Name == req.Name && r.IsActive && r.CreatedBy == creatorUserID
	})).Return(nil).Once()

	rule, err := suite.service.CreateTaxRule(ctx, suite.companyID, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(rule)
	suite.NotEmpty(rule.RuleID)
	suite.False(rule.ValidFrom.IsZero())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaxRuleServiceTestSuite) TestCreateTaxRule_NegativeRate() {
	ctx := context.Background()
	req := dto.CreateTaxRuleRequest{Kind: "iva", Name: "Broken", Rate: decimal.NewFromInt(-1)}

	rule, err := suite.service.CreateTaxRule(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TaxRuleServiceTestSuite) TestCreateTaxRule_WindowEndsBeforeStart() {
	ctx := context.Background()
	from := time.Now()
	until := from.Add(-time.Hour)
	req := dto.CreateTaxRuleRequest{Kind: "iva", Name: "Broken", Rate: decimal.NewFromInt(16), ValidFrom: &from, ValidUntil: &until}

	rule, err := suite.service.CreateTaxRule(ctx, suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TaxRuleServiceTestSuite) TestCalculateTax_HighestPriorityWins() {
	ctx := context.Background()
	// The repository contract returns rules ordered by priority descending,
	// then registration order.
	special := activeRule(domain.TaxIVA, "Special IVA", "8", 20, 2)
	general := activeRule(domain.TaxIVA, "General IVA", "16", 10, 1)
	rules := []domain.TaxRule{special, general}

	suite.mockRepo.On("ListTaxRules", ctx, suite.companyID, domain.TaxIVA, true).Return(rules, nil).Once()

	calc, err := suite.service.CalculateTax(ctx, suite.companyID, domain.TaxIVA, decimal.NewFromInt(1000), "VES")

	suite.Require().NoError(err)
	suite.Equal(special.RuleID, calc.RuleID)
	suite.True(calc.TaxAmount.Equal(decimal.RequireFromString("80.00")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaxRuleServiceTestSuite) TestCalculateTax_SkipsInapplicableRules() {
	ctx := context.Background()
	restricted := activeRule(domain.TaxIVA, "USD only", "8", 20, 2)
	restricted.Currency = "USD"
	general := activeRule(domain.TaxIVA, "General IVA", "16", 10, 1)
	rules := []domain.TaxRule{restricted, general}

	suite.mockRepo.On("ListTaxRules", ctx, suite.companyID, domain.TaxIVA, true).Return(rules, nil).Once()

	calc, err := suite.service.CalculateTax(ctx, suite.companyID, domain.TaxIVA, decimal.NewFromInt(100), "VES")

	suite.Require().NoError(err)
	suite.Equal(general.RuleID, calc.RuleID)
	suite.True(calc.TaxAmount.Equal(decimal.RequireFromString("16.00")))
}

func (suite *TaxRuleServiceTestSuite) TestCalculateTax_AmountBounds() {
	ctx := context.Background()
	bounded := activeRule(domain.TaxIVA, "Large transactions", "16", 10, 1)
	minAmount := decimal.NewFromInt(500)
	bounded.MinAmount = &minAmount
	rules := []domain.TaxRule{bounded}

	suite.mockRepo.On("ListTaxRules", ctx, suite.companyID, domain.TaxIVA, true).Return(rules, nil).Once()

	calc, err := suite.service.CalculateTax(ctx, suite.companyID, domain.TaxIVA, decimal.NewFromInt(100), "VES")

	suite.Require().NoError(err)
	suite.Empty(calc.RuleID)
	suite.True(calc.TaxAmount.IsZero())
}

func (suite *TaxRuleServiceTestSuite) TestCalculateTax_NoRulesIsNotAnError() {
	ctx := context.Background()
	suite.mockRepo.On("ListTaxRules", ctx, suite.companyID, domain.TaxISLR, true).Return([]domain.TaxRule{}, nil).Once()

	calc, err := suite.service.CalculateTax(ctx, suite.companyID, domain.TaxISLR, decimal.NewFromInt(100), "VES")

	suite.Require().NoError(err)
	suite.Require().NotNil(calc)
	suite.Empty(calc.RuleID)
	suite.True(calc.TaxAmount.IsZero())
	suite.True(calc.Rate.IsZero())
}

func (suite *TaxRuleServiceTestSuite) TestCalculateTax_NegativeAmount() {
	ctx := context.Background()
	calc, err := suite.service.CalculateTax(ctx, suite.companyID, domain.TaxIVA, decimal.NewFromInt(-5), "VES")

	suite.Require().Error(err)
	suite.Nil(calc)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TaxRuleServiceTestSuite) TestCalculateAllTaxes_SkipsKindsWithNoApplicableRule() {
	ctx := context.Background()
	ivaRule := activeRule(domain.TaxIVA, "General IVA", "16", 10, 1)
	islrBounded := activeRule(domain.TaxISLR, "ISLR retention", "2", 10, 2)
	minAmount := decimal.NewFromInt(100000)
	islrBounded.MinAmount = &minAmount

	suite.mockRepo.On("ListActiveTaxKinds", ctx, suite.companyID).Return([]domain.TaxKind{domain.TaxIVA, domain.TaxISLR}, nil).Once()
	suite.mockRepo.On("ListTaxRules", ctx, suite.companyID, domain.TaxIVA, true).Return([]domain.TaxRule{ivaRule}, nil).Once()
	suite.mockRepo.On("ListTaxRules", ctx, suite.companyID, domain.TaxISLR, true).Return([]domain.TaxRule{islrBounded}, nil).Once()

	calcs, err := suite.service.CalculateAllTaxes(ctx, suite.companyID, decimal.NewFromInt(1000), "VES")

	suite.Require().NoError(err)
	suite.Require().Len(calcs, 1)
	suite.Equal(domain.TaxIVA, calcs[0].Kind)
	suite.True(calcs[0].TaxAmount.Equal(decimal.RequireFromString("160.00")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaxRuleServiceTestSuite) TestUpdateTaxRule_Patch() {
	ctx := context.Background()
	ruleID := uuid.NewString()
	existing := activeRule(domain.TaxIVA, "General IVA", "16", 10, 1)
	existing.RuleID = ruleID

	newRate := decimal.NewFromInt(8)
	suite.mockRepo.On("FindTaxRuleByID", ctx, suite.companyID, ruleID).Return(&existing, nil).Once()
	suite.mockRepo.On("UpdateTaxRule", ctx, mock.MatchedBy(func(r domain.TaxRule) bool {
		return r.RuleID == ruleID && r.Rate.Equal(newRate)
	})).Return(nil).Once()

	rule, err := suite.service.UpdateTaxRule(ctx, suite.companyID, ruleID, dto.UpdateTaxRuleRequest{Rate: &newRate}, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(rule.Rate.Equal(newRate))
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestTaxRuleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaxRuleServiceTestSuite))
}
