package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Defendu/initializers"
	"github.com/Defendu/models"
	"github.com/Defendu/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIdentityService records calls so tests can prove the identity
// provider is never reached on fail-fast paths
type stubIdentityService struct {
	account   *services.Account
	findErr   error
	setErr    error
	findCalls int
	setCalls  int
	lastID    string
	lastPw    string
}

func (s *stubIdentityService) FindAccountByEmail(_ context.Context, email string) (*services.Account, error) {
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.account, nil
}

func (s *stubIdentityService) SetAccountPassword(_ context.Context, accountID string, newPassword string) error {
	s.setCalls++
	s.lastID = accountID
	s.lastPw = newPassword
	return s.setErr
}

type stubMailer struct {
	sentTo    []string
	sentLinks []string
	err       error
}

func (m *stubMailer) SendPasswordResetEmail(toEmail string, resetLink string) error {
	m.sentTo = append(m.sentTo, toEmail)
	m.sentLinks = append(m.sentLinks, resetLink)
	return m.err
}

func newResetController(identity *stubIdentityService, mailer services.ResetMailer, now time.Time) *PasswordResetController {
	ctrl := NewPasswordResetController(services.NewTokenStore(initializers.DB), identity, mailer)
	ctrl.Now = func() time.Time { return now }
	return ctrl
}

func postJSON(c *gin.Context, path string, body interface{}) {
	var jsonData []byte
	if str, ok := body.(string); ok {
		jsonData = []byte(str)
	} else {
		jsonData, _ = json.Marshal(body)
	}
	c.Request = httptest.NewRequest("POST", path, bytes.NewBuffer(jsonData))
	c.Request.Header.Set("Content-Type", "application/json")
}

func tokenRows(token string, email string, expiresAt int64, used bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"token", "email", "expires_at", "used", "created_at"}).
		AddRow(token, email, expiresAt, used, time.Now())
}

// Test ValidateResetToken - read-only token check with lazy expiry cleanup
func TestValidateResetToken(t *testing.T) {
	t0 := time.Now().Truncate(time.Millisecond)
	expiresAt := t0.Add(models.ResetTokenLifetime).UnixMilli() // t0 + 300000

	tests := []struct {
		name           string
		requestBody    interface{}
		tokenRow       *sqlmock.Rows
		expectDelete   bool
		now            time.Time
		expectedStatus int
		expectValid    bool
		expectedError  string
		expectedRemain int64
	}{
		{
			name:           "valid unexpired token",
			requestBody:    models.ValidateResetTokenRequest{Token: "abc123"},
			tokenRow:       tokenRows("abc123", "user@example.com", expiresAt, false),
			now:            t0,
			expectedStatus: http.StatusOK,
			expectValid:    true,
			expectedRemain: 300000,
		},
		{
			name:           "one millisecond before expiry",
			requestBody:    models.ValidateResetTokenRequest{Token: "abc123"},
			tokenRow:       tokenRows("abc123", "user@example.com", expiresAt, false),
			now:            t0.Add(299999 * time.Millisecond),
			expectedStatus: http.StatusOK,
			expectValid:    true,
			expectedRemain: 1,
		},
		{
			name:           "one millisecond past expiry",
			requestBody:    models.ValidateResetTokenRequest{Token: "abc123"},
			tokenRow:       tokenRows("abc123", "user@example.com", expiresAt, false),
			expectDelete:   true,
			now:            t0.Add(300001 * time.Millisecond),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Token has expired. Please request a new password reset link.",
		},
		{
			name:           "token not found",
			requestBody:    models.ValidateResetTokenRequest{Token: "missing"},
			tokenRow:       sqlmock.NewRows([]string{"token", "email", "expires_at", "used", "created_at"}),
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid or expired token",
		},
		{
			name:           "token already used",
			requestBody:    models.ValidateResetTokenRequest{Token: "abc123"},
			tokenRow:       tokenRows("abc123", "user@example.com", expiresAt, true),
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "This token has already been used",
		},
		{
			name:           "missing token field",
			requestBody:    map[string]interface{}{"notToken": "abc123"},
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Valid token is required",
		},
		{
			name:           "invalid JSON",
			requestBody:    "{invalid json}",
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Valid token is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			if tt.tokenRow != nil {
				mock.ExpectQuery("SELECT").WillReturnRows(tt.tokenRow)
			}
			if tt.expectDelete {
				mock.ExpectExec("DELETE FROM \"password_reset_tokens\"").
					WillReturnResult(sqlmock.NewResult(0, 1))
			}

			identity := &stubIdentityService{}
			ctrl := newResetController(identity, &stubMailer{}, tt.now)

			c, w := SetupTestContext()
			postJSON(c, "/validate-reset-token", tt.requestBody)

			ctrl.ValidateResetToken(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			if tt.expectValid {
				assert.Equal(t, true, response["valid"])
				assert.Equal(t, "user@example.com", response["email"])
				assert.Equal(t, float64(expiresAt), response["expiresAt"])
				assert.Equal(t, float64(tt.expectedRemain), response["timeRemaining"])
			} else {
				assert.Equal(t, false, response["valid"])
				assert.Equal(t, tt.expectedError, response["error"])
			}

			// Validation never touches the identity provider
			assert.Zero(t, identity.findCalls)
			assert.Zero(t, identity.setCalls)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// Test ConfirmPasswordReset - exactly-once privileged mutation per token
func TestConfirmPasswordReset(t *testing.T) {
	t0 := time.Now().Truncate(time.Millisecond)
	expiresAt := t0.Add(models.ResetTokenLifetime).UnixMilli()

	tests := []struct {
		name            string
		requestBody     interface{}
		tokenRow        *sqlmock.Rows
		expectDelete    bool
		claimRows       int64 // rows affected by the conditional mark-used, -1 = no claim expected
		findErr         error
		setErr          error
		now             time.Time
		expectedStatus  int
		expectSuccess   bool
		expectedError   string
		expectIdentity  bool
		expectPwChanged bool
	}{
		{
			name:            "successful reset",
			requestBody:     models.ConfirmPasswordResetRequest{Token: "abc123", NewPassword: "newpassword123"},
			tokenRow:        tokenRows("abc123", "user@example.com", expiresAt, false),
			claimRows:       1,
			now:             t0,
			expectedStatus:  http.StatusOK,
			expectSuccess:   true,
			expectIdentity:  true,
			expectPwChanged: true,
		},
		{
			name:           "password too short never reaches the store",
			requestBody:    models.ConfirmPasswordResetRequest{Token: "abc123", NewPassword: "short"},
			claimRows:      -1,
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Password must be at least 8 characters long",
		},
		{
			name:           "missing token",
			requestBody:    map[string]interface{}{"newPassword": "newpassword123"},
			claimRows:      -1,
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Token and new password are required",
		},
		{
			name:           "missing password",
			requestBody:    map[string]interface{}{"token": "abc123"},
			claimRows:      -1,
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Token and new password are required",
		},
		{
			name:           "invalid JSON",
			requestBody:    "{invalid json}",
			claimRows:      -1,
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Token and new password are required",
		},
		{
			name:           "unknown token never reaches the identity provider",
			requestBody:    models.ConfirmPasswordResetRequest{Token: "missing", NewPassword: "newpassword123"},
			tokenRow:       sqlmock.NewRows([]string{"token", "email", "expires_at", "used", "created_at"}),
			claimRows:      -1,
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid or expired token",
		},
		{
			name:           "expired token is deleted",
			requestBody:    models.ConfirmPasswordResetRequest{Token: "abc123", NewPassword: "newpassword123"},
			tokenRow:       tokenRows("abc123", "user@example.com", expiresAt, false),
			expectDelete:   true,
			claimRows:      -1,
			now:            t0.Add(models.ResetTokenLifetime + time.Millisecond),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Token has expired. Please request a new password reset link.",
		},
		{
			name:           "already used token",
			requestBody:    models.ConfirmPasswordResetRequest{Token: "abc123", NewPassword: "newpassword123"},
			tokenRow:       tokenRows("abc123", "user@example.com", expiresAt, true),
			claimRows:      -1,
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "This token has already been used",
		},
		{
			name:           "lost claim race reports already used",
			requestBody:    models.ConfirmPasswordResetRequest{Token: "abc123", NewPassword: "newpassword123"},
			tokenRow:       tokenRows("abc123", "user@example.com", expiresAt, false),
			claimRows:      0,
			now:            t0,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "This token has already been used",
		},
		{
			name:           "identity provider failure surfaces as internal error",
			requestBody:    models.ConfirmPasswordResetRequest{Token: "abc123", NewPassword: "newpassword123"},
			tokenRow:       tokenRows("abc123", "user@example.com", expiresAt, false),
			claimRows:      1,
			setErr:         assert.AnError,
			now:            t0,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to reset password",
			expectIdentity: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			if tt.tokenRow != nil {
				mock.ExpectQuery("SELECT").WillReturnRows(tt.tokenRow)
			}
			if tt.expectDelete {
				mock.ExpectExec("DELETE FROM \"password_reset_tokens\"").
					WillReturnResult(sqlmock.NewResult(0, 1))
			}
			if tt.claimRows >= 0 {
				mock.ExpectExec("UPDATE \"password_reset_tokens\"").
					WillReturnResult(sqlmock.NewResult(0, tt.claimRows))
			}

			identity := &stubIdentityService{
				account: &services.Account{ID: "uid-1", Email: "user@example.com"},
				findErr: tt.findErr,
				setErr:  tt.setErr,
			}
			ctrl := newResetController(identity, &stubMailer{}, tt.now)

			c, w := SetupTestContext()
			postJSON(c, "/confirm-password-reset", tt.requestBody)

			ctrl.ConfirmPasswordReset(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			if tt.expectSuccess {
				assert.Equal(t, true, response["success"])
				assert.NotNil(t, response["message"])
			} else {
				assert.Equal(t, tt.expectedError, response["error"])
			}

			if tt.expectIdentity {
				assert.Equal(t, 1, identity.findCalls)
			} else {
				assert.Zero(t, identity.findCalls)
				assert.Zero(t, identity.setCalls)
			}

			if tt.expectPwChanged {
				assert.Equal(t, 1, identity.setCalls)
				assert.Equal(t, "uid-1", identity.lastID)
				assert.Equal(t, "newpassword123", identity.lastPw)
			}

			// No unexpected store traffic on fail-fast paths
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// Test RequestPasswordReset - token issuance and reset link email
func TestRequestPasswordReset(t *testing.T) {
	t0 := time.Now().Truncate(time.Millisecond)

	tests := []struct {
		name           string
		requestBody    interface{}
		accountExists  bool
		insertFails    bool
		mailerErr      error
		noMailer       bool
		expectedStatus int
		expectError    bool
		expectEmail    bool
	}{
		{
			name:           "successful request",
			requestBody:    models.RequestPasswordResetRequest{Email: "user@example.com"},
			accountExists:  true,
			expectedStatus: http.StatusOK,
			expectEmail:    true,
		},
		{
			name:           "unknown email returns generic success",
			requestBody:    models.RequestPasswordResetRequest{Email: "nobody@example.com"},
			accountExists:  false,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid email",
			requestBody:    map[string]interface{}{"email": "not-an-email"},
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "missing email",
			requestBody:    map[string]interface{}{"notEmail": "user@example.com"},
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "store insert fails",
			requestBody:    models.RequestPasswordResetRequest{Email: "user@example.com"},
			accountExists:  true,
			insertFails:    true,
			expectedStatus: http.StatusInternalServerError,
			expectError:    true,
		},
		{
			name:           "email service unavailable",
			requestBody:    models.RequestPasswordResetRequest{Email: "user@example.com"},
			accountExists:  true,
			noMailer:       true,
			expectedStatus: http.StatusInternalServerError,
			expectError:    true,
		},
		{
			name:           "email send fails",
			requestBody:    models.RequestPasswordResetRequest{Email: "user@example.com"},
			accountExists:  true,
			mailerErr:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			if tt.accountExists {
				if tt.insertFails {
					mock.ExpectExec("INSERT INTO \"password_reset_tokens\"").
						WillReturnError(sqlmock.ErrCancelled)
				} else {
					mock.ExpectExec("INSERT INTO \"password_reset_tokens\"").
						WillReturnResult(sqlmock.NewResult(1, 1))
				}
			}

			identity := &stubIdentityService{
				account: &services.Account{ID: "uid-1", Email: "user@example.com"},
			}
			if !tt.accountExists {
				identity.account = nil
				identity.findErr = services.ErrAccountNotFound
			}

			mailer := &stubMailer{err: tt.mailerErr}
			var ctrl *PasswordResetController
			if tt.noMailer {
				ctrl = newResetController(identity, nil, t0)
			} else {
				ctrl = newResetController(identity, mailer, t0)
			}

			c, w := SetupTestContext()
			postJSON(c, "/api/password-reset", tt.requestBody)

			ctrl.RequestPasswordReset(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			if tt.expectError {
				assert.NotNil(t, response["error"])
			} else {
				assert.Equal(t, genericResetMessage, response["message"])
			}

			if tt.expectEmail {
				require.Len(t, mailer.sentTo, 1)
				assert.Equal(t, "user@example.com", mailer.sentTo[0])
				assert.Contains(t, mailer.sentLinks[0], "?token=")
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
