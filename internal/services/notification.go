package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// AlertNotifier delivers regulatory alerts to a Telegram channel. With no
// bot token configured it degrades to a no-op so the service runs without
// Telegram in development.
type AlertNotifier struct {
	bot    *bot.Bot
	chatID int64
	logger *logrus.Logger
}

// NewAlertNotifier creates a notifier. An empty token disables delivery.
func NewAlertNotifier(botToken, chatID string, logger *logrus.Logger) *AlertNotifier {
	if logger == nil {
		logger = logrus.New()
	}

	notifier := &AlertNotifier{logger: logger}
	if botToken == "" {
		return notifier
	}

	parsedChatID, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		logger.WithError(err).Warn("Invalid Telegram chat ID, alert delivery disabled")
		return notifier
	}

	telegramBot, err := bot.New(botToken)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize Telegram bot, alert delivery disabled")
		return notifier
	}

	notifier.bot = telegramBot
	notifier.chatID = parsedChatID
	return notifier
}

// Enabled reports whether alert delivery is configured.
func (n *AlertNotifier) Enabled() bool {
	return n.bot != nil
}

// NotifyAlerts sends one message summarizing the fund's triggered alerts.
func (n *AlertNotifier) NotifyAlerts(ctx context.Context, fund *models.FundProfile, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if n.bot == nil {
		n.logger.Debug("Alert notifier disabled, skipping delivery")
		return nil
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      formatAlertMessage(fund, alerts),
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send alert notification: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"fund_id": fund.ID,
		"alerts":  len(alerts),
	}).Info("Alert notification sent")
	return nil
}

// formatAlertMessage renders the Telegram message body.
func formatAlertMessage(fund *models.FundProfile, alerts []models.Alert) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Regulatory Alerts: %s*\n", fund.Name))
	if fund.Family != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", fund.Family))
	}
	sb.WriteString("\n")

	for _, alert := range alerts {
		icon := "ℹ️"
		if alert.Severity == AlertSeverityWarning {
			icon = "⚠️"
		}
		sb.WriteString(fmt.Sprintf("%s *%s*: %s\n", icon, alert.Type, alert.Message))
	}

	return sb.String()
}
