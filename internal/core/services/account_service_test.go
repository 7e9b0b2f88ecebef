package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/core/services"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, includeHeaders bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeHeaders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, code string, active bool, userID string, now time.Time) error {
	args := m.Called(ctx, code, active, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	parent := &domain.Account{AccountID: 1, Code: "1-0000", IsHeader: true, AccountType: domain.Asset}
	req := dto.CreateAccountRequest{
		Code:        " 1-1200 ",
		Name:        "Kas Kecil",
		AccountType: "ASSET",
		ParentCode:  strPtr("1-0000"),
	}

	var saved domain.Account
	suite.mockRepo.On("FindAccountByCode", ctx, "1-0000").Return(parent, nil).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Account) }).
		Return(&domain.Account{AccountID: 42, Code: "1-1200"}, nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, testUser)

	suite.Require().NoError(err)
	suite.Equal(int64(42), created.AccountID)
	suite.Equal("1-1200", saved.Code)
	suite.Equal("Kas Kecil", saved.Name)
	suite.Equal(domain.Asset, saved.AccountType)
	suite.Equal(domain.Debit, saved.NormalBalanceSide)
	suite.True(saved.IsActive)
	suite.Equal("1-0000", *saved.ParentCode)
	suite.Equal(testUser, saved.CreatedBy)
	suite.WithinDuration(time.Now(), saved.CreatedAt, time.Second)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ValidationFailures() {
	ctx := context.Background()
	cases := []struct {
		name  string
		req   dto.CreateAccountRequest
		field string
	}{
		{"missing code", dto.CreateAccountRequest{Name: "x", AccountType: "asset"}, "code"},
		{"bad type", dto.CreateAccountRequest{Code: "9-1", Name: "x", AccountType: "cash"}, "accountType"},
		{"bad side", dto.CreateAccountRequest{Code: "9-1", Name: "x", AccountType: "asset", NormalBalanceSide: strPtr("left")}, "normalBalanceSide"},
		{"carry on revenue", dto.CreateAccountRequest{Code: "9-1", Name: "x", AccountType: "revenue", CarriesShu: true}, "carriesShu"},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.service.CreateAccount(ctx, tc.req, testUser)
			suite.ErrorIs(err, apperrors.ErrValidation)
			suite.Contains(apperrors.FieldErrors(err), tc.field)
		})
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentMustBeHeader() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByCode", ctx, "1-1000").
		Return(&domain.Account{Code: "1-1000", AccountType: domain.Asset}, nil).Once()
	suite.mockRepo.On("FindAccountByCode", ctx, "1-9999").
		Return(nil, apperrors.NewNotFoundError("account 1-9999")).Once()

	_, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{Code: "1-1001", Name: "x", AccountType: "asset", ParentCode: strPtr("1-1000")}, testUser)
	suite.Contains(apperrors.FieldErrors(err), "parentCode")

	_, err = suite.service.CreateAccount(ctx, dto.CreateAccountRequest{Code: "1-1001", Name: "x", AccountType: "asset", ParentCode: strPtr("1-9999")}, testUser)
	suite.Contains(apperrors.FieldErrors(err), "parentCode")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateIsConflict() {
	ctx := context.Background()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Return(nil, fmt.Errorf("%w: account code 4-1000", apperrors.ErrDuplicate)).Once()

	_, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{Code: "4-1000", Name: "x", AccountType: "revenue"}, testUser)

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_SaveError() {
	ctx := context.Background()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil, assert.AnError).Once()

	created, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{Code: "5-3000", Name: "x", AccountType: "expense"}, testUser)

	suite.Nil(created)
	suite.ErrorIs(err, assert.AnError)
}

func (suite *AccountServiceTestSuite) TestSetAccountActive() {
	ctx := context.Background()
	before := &domain.Account{AccountID: 7, Code: "1-1100", IsActive: true}
	after := &domain.Account{AccountID: 7, Code: "1-1100", IsActive: false}
	suite.mockRepo.On("FindAccountByID", ctx, int64(7)).Return(before, nil).Once()
	suite.mockRepo.On("SetAccountActive", ctx, "1-1100", false, testUser, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, int64(7)).Return(after, nil).Once()

	got, err := suite.service.SetAccountActive(ctx, 7, false, testUser)

	suite.Require().NoError(err)
	suite.False(got.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestClassify() {
	suite.True(suite.service.Classify(domain.Account{AccountType: domain.Revenue}).IsRevenue)
	suite.True(suite.service.Classify(domain.Account{AccountType: domain.Expense}).AffectsShu())
	suite.True(suite.service.Classify(domain.Account{AccountType: domain.Equity, CarriesShu: true}).CarriesShu)
	suite.False(suite.service.Classify(domain.Account{AccountType: domain.Asset, CarriesShu: true}).AffectsShu())
}
