package hrauth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	hrauth "github.com/peoplekit/go-hrauth"
)

type controllerFixture struct {
	app      *fiber.App
	repo     *MockRepositoryManager
	accounts *MockAccounts
	roles    *MockRoles
	mailer   *MockMailer
	tokens   *MockTokenService
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	roles := &MockRoles{}
	mailer := &MockMailer{}
	tokens := &MockTokenService{}

	repo.On("Accounts").Return(accounts).Maybe()
	repo.On("Roles").Return(roles).Maybe()

	auther := hrauth.NewAuthenticator(repo, tokens).WithLogger(testLogger{})

	app := fiber.New()
	hrauth.RegisterAuthRoutes(app,
		hrauth.WithControllerLogger(testLogger{}),
		hrauth.WithControllerRepo(repo),
		hrauth.WithControllerAuther(auther),
		hrauth.WithControllerMailer(mailer),
	)

	return &controllerFixture{
		app:      app,
		repo:     repo,
		accounts: accounts,
		roles:    roles,
		mailer:   mailer,
		tokens:   tokens,
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}

func TestLoginEndpointSuccess(t *testing.T) {
	fx := newControllerFixture(t)

	account := activeAccount("bob@x.com", "correct horse battery")

	fx.accounts.On("GetByEmail", mock.Anything, "bob@x.com").Return(account, nil).Once()
	fx.accounts.On("TrackSuccessfulLogin", mock.Anything, account).Return(nil).Once()
	fx.tokens.On("Issue", "bob@x.com", mock.Anything).Return("signed-token", nil).Once()

	resp := postJSON(t, fx.app, "/auth/login", fiber.Map{
		"email":    "bob@x.com",
		"password": "correct horse battery",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result hrauth.LoginResult
	require.NoError(t, json.Unmarshal(readBody(t, resp), &result))
	assert.Equal(t, "signed-token", result.Token)
	assert.Equal(t, "bob@x.com", result.Email)
}

func TestLoginEndpointFailureBodiesAreByteIdentical(t *testing.T) {
	fx := newControllerFixture(t)

	account := activeAccount("bob@x.com", "correct horse battery")

	fx.accounts.On("GetByEmail", mock.Anything, "nobody@x.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	fx.accounts.On("GetByEmail", mock.Anything, "bob@x.com").Return(account, nil).Once()
	fx.accounts.On("TrackAttemptedLogin", mock.Anything, account).Return(nil).Once()

	unknownResp := postJSON(t, fx.app, "/auth/login", fiber.Map{
		"email":    "nobody@x.com",
		"password": "whatever123",
	})
	wrongPassResp := postJSON(t, fx.app, "/auth/login", fiber.Map{
		"email":    "bob@x.com",
		"password": "not the password",
	})

	assert.Equal(t, fiber.StatusUnauthorized, unknownResp.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, wrongPassResp.StatusCode)

	// Byte-for-byte: nothing in the body reveals which half failed.
	assert.Equal(t, readBody(t, unknownResp), readBody(t, wrongPassResp))
}

func TestLoginEndpointRejectsInvalidPayload(t *testing.T) {
	fx := newControllerFixture(t)

	resp := postJSON(t, fx.app, "/auth/login", fiber.Map{
		"email":    "not-an-email",
		"password": "whatever123",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	fx.accounts.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestRegisterEndpointCreatesAccount(t *testing.T) {
	fx := newControllerFixture(t)

	role := &hrauth.Role{Name: hrauth.RoleEmployee}

	passthroughTx(fx.repo).Once()
	fx.accounts.On("ExistsByEmail", mock.Anything, "bob@x.com").Return(false, nil).Once()
	fx.roles.On("GetByName", mock.Anything, hrauth.RoleEmployee).Return(role, nil).Once()
	fx.accounts.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).
		Return(&hrauth.Account{
			Email:    "bob@x.com",
			Username: "bob",
			Status:   hrauth.AccountStatusActive,
		}, nil).Once()
	fx.accounts.On("AssignRoleTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	resp := postJSON(t, fx.app, "/auth/register", fiber.Map{
		"email":    "bob@x.com",
		"password": "opensesame123",
		"role":     hrauth.RoleEmployee,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := string(readBody(t, resp))
	assert.Contains(t, body, "bob@x.com")
	assert.Contains(t, body, hrauth.RoleEmployee)
	assert.NotContains(t, body, "opensesame123")
}

func TestRegisterEndpointRejectsDuplicateEmail(t *testing.T) {
	fx := newControllerFixture(t)

	fx.accounts.On("ExistsByEmail", mock.Anything, "bob@x.com").Return(true, nil).Once()

	resp := postJSON(t, fx.app, "/auth/register", fiber.Map{
		"email":    "bob@x.com",
		"password": "opensesame123",
		"role":     hrauth.RoleEmployee,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(readBody(t, resp)), hrauth.TextCodeDuplicateEmail)
}

func TestForgotEndpointAlwaysReturnsGenericMessage(t *testing.T) {
	fx := newControllerFixture(t)

	account := activeAccount("bob@x.com", "correct horse battery")

	fx.accounts.On("GetByEmail", mock.Anything, "bob@x.com").Return(account, nil).Once()
	fx.accounts.On("GetByEmail", mock.Anything, "nobody@x.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	fx.accounts.On("SetResetChallenge", mock.Anything, account.ID, mock.Anything, mock.Anything).
		Return(nil).Once()
	fx.mailer.On("SendResetCode", mock.Anything, "bob@x.com", mock.Anything).Return(nil).Maybe()

	knownResp := postJSON(t, fx.app, "/password/forgot", fiber.Map{"email": "bob@x.com"})
	unknownResp := postJSON(t, fx.app, "/password/forgot", fiber.Map{"email": "nobody@x.com"})

	assert.Equal(t, fiber.StatusOK, knownResp.StatusCode)
	assert.Equal(t, fiber.StatusOK, unknownResp.StatusCode)

	// Same status, same body, regardless of whether the account exists.
	assert.Equal(t, readBody(t, knownResp), readBody(t, unknownResp))
}

func TestVerifyEndpointReportsOutcomeInBody(t *testing.T) {
	fx := newControllerFixture(t)

	live := challengedAccount("123456", timeNowPlus10m())
	stale := challengedAccount("123456", time.Now().Add(-time.Minute))

	fx.accounts.On("GetByEmail", mock.Anything, "bob@x.com").Return(live, nil).Twice()
	fx.accounts.On("GetByEmail", mock.Anything, "late@x.com").Return(stale, nil).Once()

	type verifyBody struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}

	// All three outcomes are 200; only the body distinguishes them.
	okResp := postJSON(t, fx.app, "/password/verify", fiber.Map{
		"email": "bob@x.com",
		"code":  "123456",
	})
	require.Equal(t, fiber.StatusOK, okResp.StatusCode)

	var ok verifyBody
	require.NoError(t, json.Unmarshal(readBody(t, okResp), &ok))
	assert.True(t, ok.Valid)
	assert.Equal(t, hrauth.ResetCodeValidMessage, ok.Message)

	badResp := postJSON(t, fx.app, "/password/verify", fiber.Map{
		"email": "bob@x.com",
		"code":  "654321",
	})
	require.Equal(t, fiber.StatusOK, badResp.StatusCode)

	var bad verifyBody
	require.NoError(t, json.Unmarshal(readBody(t, badResp), &bad))
	assert.False(t, bad.Valid)
	assert.Equal(t, hrauth.ErrInvalidResetCode.Message, bad.Message)

	lateResp := postJSON(t, fx.app, "/password/verify", fiber.Map{
		"email": "late@x.com",
		"code":  "123456",
	})
	require.Equal(t, fiber.StatusOK, lateResp.StatusCode)

	var late verifyBody
	require.NoError(t, json.Unmarshal(readBody(t, lateResp), &late))
	assert.False(t, late.Valid)
	assert.Equal(t, hrauth.ErrExpiredResetCode.Message, late.Message)
}

func TestVerifyEndpointRejectsNonNumericCode(t *testing.T) {
	fx := newControllerFixture(t)

	resp := postJSON(t, fx.app, "/password/verify", fiber.Map{
		"email": "bob@x.com",
		"code":  "12a456",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	fx.accounts.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestResetEndpointUpdatesPassword(t *testing.T) {
	fx := newControllerFixture(t)

	account := challengedAccount("123456", timeNowPlus10m())

	passthroughTx(fx.repo).Once()
	fx.accounts.On("GetByEmailTx", mock.Anything, mock.Anything, "bob@x.com").
		Return(account, nil).Once()
	fx.accounts.On("ResetPasswordTx", mock.Anything, mock.Anything, account.ID, mock.Anything).
		Return(nil).Once()

	resp := postJSON(t, fx.app, "/password/reset", fiber.Map{
		"email":        "bob@x.com",
		"code":         "123456",
		"new_password": "a brand new password",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	fx.accounts.AssertExpectations(t)
}
