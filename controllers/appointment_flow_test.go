package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wellfield-backend/config"
	"wellfield-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func managerSession(t *testing.T, r *gin.Engine) string {
	t.Helper()

	manager := models.User{Username: "boss", Email: "boss@example.com",
		Password: "pass", IsActive: true}
	require.NoError(t, config.DB.Create(&manager).Error)
	group := models.Group{Name: models.GroupManagers}
	require.NoError(t, config.DB.Create(&group).Error)
	require.NoError(t, config.DB.Model(&manager).Association("Groups").Append(&group))

	w := passwordLogin(t, r, "boss", "pass")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func managerRequest(t *testing.T, r *gin.Engine, session, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+session)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAppointmentStatusWhitelist(t *testing.T) {
	r, _ := setupTestRouter(t)
	session := managerSession(t, r)

	user := models.User{Username: "cust@example.com", Email: "cust@example.com", IsActive: true}
	require.NoError(t, config.DB.Create(&user).Error)
	profile := models.CustomerProfile{UserID: user.ID, FirstContact: time.Now().UTC()}
	require.NoError(t, config.DB.Create(&profile).Error)
	appt := models.Appointment{ProfileID: profile.ID, Date: time.Now().UTC().Add(48 * time.Hour)}
	require.NoError(t, config.DB.Create(&appt).Error)

	w := managerRequest(t, r, session, http.MethodPatch,
		"/api/appointments/"+appt.ID.String()+"/status",
		gin.H{"invoiced": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Appointment
	require.NoError(t, config.DB.First(&stored, "id = ?", appt.ID).Error)
	assert.True(t, stored.Invoiced)
	assert.False(t, stored.Paid)

	// Anything outside invoiced/paid is rejected outright.
	w = managerRequest(t, r, session, http.MethodPatch,
		"/api/appointments/"+appt.ID.String()+"/status",
		gin.H{"paid": true, "date": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, config.DB.First(&stored, "id = ?", appt.ID).Error)
	assert.False(t, stored.Paid, "rejected request must not apply partially")
}

func TestSendMagicLinkAction(t *testing.T) {
	r, mailer := setupTestRouter(t)
	session := managerSession(t, r)

	submitContact(t, r, "relink@example.com")
	mailCountAfterIntake := len(mailer.sent)

	var profile models.CustomerProfile
	require.NoError(t, config.DB.
		Joins("JOIN users ON users.id = customer_profiles.user_id").
		Where("users.username = ?", "relink@example.com").
		First(&profile).Error)
	originalToken := *profile.MagicLinkToken

	w := managerRequest(t, r, session, http.MethodPost,
		"/api/customers/"+profile.ID.String()+"/magic-link", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, config.DB.First(&profile, "id = ?", profile.ID).Error)
	require.NotNil(t, profile.MagicLinkToken)
	assert.NotEqual(t, originalToken, *profile.MagicLinkToken)

	require.Len(t, mailer.sent, mailCountAfterIntake+1)
	msg := mailer.sent[len(mailer.sent)-1]
	assert.Equal(t, "relink@example.com", msg.To)
	assert.Contains(t, msg.Body, "/magic-login/"+*profile.MagicLinkToken)

	var logCount int64
	config.DB.Model(&models.NotificationLog{}).
		Where("kind = ?", models.NotificationKindMagicLink).
		Count(&logCount)
	assert.EqualValues(t, 1, logCount)
}
