package services

import (
	"context"
	"testing"

	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlertNotifierDisabledWithoutToken(t *testing.T) {
	notifier := NewAlertNotifier("", "12345", nil)
	assert.False(t, notifier.Enabled())
}

func TestNewAlertNotifierDisabledWithBadChatID(t *testing.T) {
	notifier := NewAlertNotifier("some-token", "not-a-number", logrus.New())
	assert.False(t, notifier.Enabled())
}

func TestNotifyAlertsNoOpWhenDisabled(t *testing.T) {
	notifier := NewAlertNotifier("", "", nil)
	fund := &models.FundProfile{ID: "fund-1", Name: "Test Fund"}
	alerts := []models.Alert{{Type: "volatility", Severity: AlertSeverityWarning, Message: "too spicy"}}

	err := notifier.NotifyAlerts(context.Background(), fund, alerts)
	require.NoError(t, err)
}

func TestNotifyAlertsNoOpWithoutAlerts(t *testing.T) {
	notifier := NewAlertNotifier("", "", nil)
	fund := &models.FundProfile{ID: "fund-1", Name: "Test Fund"}

	err := notifier.NotifyAlerts(context.Background(), fund, nil)
	require.NoError(t, err)
}

func TestFormatAlertMessage(t *testing.T) {
	fund := &models.FundProfile{
		ID:     "fund-1",
		Name:   "Test Growth Fund",
		Family: "Test Family",
	}
	alerts := []models.Alert{
		{
			Type:     "volatility",
			Severity: AlertSeverityWarning,
			Message:  "volatility 36.40 exceeds 25.00 threshold",
			Value:    decimal.NewFromFloat(36.4),
		},
		{
			Type:     "fund_age",
			Severity: AlertSeverityInfo,
			Message:  "fund is 0.5 years old; limited performance history",
		},
	}

	msg := formatAlertMessage(fund, alerts)

	assert.Contains(t, msg, "*Regulatory Alerts: Test Growth Fund*")
	assert.Contains(t, msg, "_Test Family_")
	assert.Contains(t, msg, "⚠️ *volatility*")
	assert.Contains(t, msg, "ℹ️ *fund_age*")
	assert.Contains(t, msg, "exceeds 25.00 threshold")
}

func TestFormatAlertMessageOmitsEmptyFamily(t *testing.T) {
	fund := &models.FundProfile{ID: "fund-1", Name: "Solo Fund"}
	alerts := []models.Alert{{Type: "expense_ratio", Severity: AlertSeverityWarning, Message: "m"}}

	msg := formatAlertMessage(fund, alerts)
	assert.NotContains(t, msg, "_")
}
