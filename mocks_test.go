package hrauth_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	hrauth "github.com/peoplekit/go-hrauth"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockRepositoryManager implements hrauth.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Accounts() hrauth.Accounts {
	args := m.Called()
	return args.Get(0).(hrauth.Accounts)
}

func (m *MockRepositoryManager) Roles() hrauth.Roles {
	args := m.Called()
	return args.Get(0).(hrauth.Roles)
}

// passthroughTx makes RunInTx invoke the given function with a zero bun.Tx,
// so handler logic inside the transaction runs against the mocks. The
// callback's error is propagated the way a real transaction would.
func passthroughTx(repo *MockRepositoryManager) *mock.Call {
	return repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			_ = fn(args.Get(0).(context.Context), tx)
		})
}

// MockAccounts implements hrauth.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) GetByEmail(ctx context.Context, email string) (*hrauth.Account, error) {
	args := m.Called(ctx, email)
	var account *hrauth.Account
	if v := args.Get(0); v != nil {
		account = v.(*hrauth.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*hrauth.Account, error) {
	args := m.Called(ctx, tx, email)
	var account *hrauth.Account
	if v := args.Get(0); v != nil {
		account = v.(*hrauth.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccounts) GetByID(ctx context.Context, id uuid.UUID) (*hrauth.Account, error) {
	args := m.Called(ctx, id)
	var account *hrauth.Account
	if v := args.Get(0); v != nil {
		account = v.(*hrauth.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccounts) List(ctx context.Context) ([]*hrauth.Account, error) {
	args := m.Called(ctx)
	var accounts []*hrauth.Account
	if v := args.Get(0); v != nil {
		accounts = v.([]*hrauth.Account)
	}
	return accounts, args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, record *hrauth.Account) (*hrauth.Account, error) {
	args := m.Called(ctx, record)
	var account *hrauth.Account
	if v := args.Get(0); v != nil {
		account = v.(*hrauth.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *hrauth.Account) (*hrauth.Account, error) {
	args := m.Called(ctx, tx, record)
	var account *hrauth.Account
	if v := args.Get(0); v != nil {
		account = v.(*hrauth.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccounts) AssignRoleTx(ctx context.Context, tx bun.IDB, accountID, roleID uuid.UUID) error {
	args := m.Called(ctx, tx, accountID, roleID)
	return args.Error(0)
}

func (m *MockAccounts) SetResetChallenge(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	args := m.Called(ctx, id, code, expiresAt)
	return args.Error(0)
}

func (m *MockAccounts) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccounts) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccounts) TrackAttemptedLogin(ctx context.Context, account *hrauth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccounts) TrackSuccessfulLogin(ctx context.Context, account *hrauth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockRoles implements hrauth.Roles
type MockRoles struct {
	mock.Mock
}

func (m *MockRoles) GetByName(ctx context.Context, name string) (*hrauth.Role, error) {
	args := m.Called(ctx, name)
	var role *hrauth.Role
	if v := args.Get(0); v != nil {
		role = v.(*hrauth.Role)
	}
	return role, args.Error(1)
}

func (m *MockRoles) Create(ctx context.Context, record *hrauth.Role) (*hrauth.Role, error) {
	args := m.Called(ctx, record)
	var role *hrauth.Role
	if v := args.Get(0); v != nil {
		role = v.(*hrauth.Role)
	}
	return role, args.Error(1)
}

func (m *MockRoles) GetOrCreate(ctx context.Context, record *hrauth.Role) (*hrauth.Role, error) {
	args := m.Called(ctx, record)
	var role *hrauth.Role
	if v := args.Get(0); v != nil {
		role = v.(*hrauth.Role)
	}
	return role, args.Error(1)
}

// MockMailer implements hrauth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendResetCode(ctx context.Context, toEmail, code string) error {
	args := m.Called(ctx, toEmail, code)
	return args.Error(0)
}

// MockTokenService implements hrauth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(subject string, roles []string) (string, error) {
	args := m.Called(subject, roles)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (hrauth.AuthClaims, error) {
	args := m.Called(tokenString)
	var claims hrauth.AuthClaims
	if v := args.Get(0); v != nil {
		claims = v.(hrauth.AuthClaims)
	}
	return claims, args.Error(1)
}

func timeNowPlus10m() time.Time {
	return time.Now().Add(10 * time.Minute)
}

func activeAccount(email, password string) *hrauth.Account {
	hash, err := hrauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return &hrauth.Account{
		ID:           uuid.New(),
		Email:        email,
		Username:     "tester",
		PasswordHash: hash,
		Status:       hrauth.AccountStatusActive,
		Roles: []*hrauth.Role{
			{ID: uuid.New(), Name: hrauth.RoleEmployee},
		},
	}
}
