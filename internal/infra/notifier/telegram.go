package notifier

import (
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// TelegramNotifier pushes operational alerts (dead credentials, halted
// batches) to the admin's Telegram chat. When no token is configured the
// notifier is a no-op so the rest of the system never has to care.
type TelegramNotifier struct {
	bot         *telebot.Bot
	adminChatID int64
	logger      *logrus.Logger
}

// New builds the notifier. An empty token yields a disabled notifier, not an
// error.
func New(token string, adminChatID int64, logger *logrus.Logger) (*TelegramNotifier, error) {
	n := &TelegramNotifier{adminChatID: adminChatID, logger: logger}
	if token == "" || adminChatID == 0 {
		logger.Info("telegram alerts disabled, no token or admin chat configured")
		return n, nil
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	n.bot = bot
	return n, nil
}

// Notify sends the alert text, best effort. Alerting must never take a
// batch down with it.
func (n *TelegramNotifier) Notify(text string) {
	if n.bot == nil {
		return
	}
	recipient := &telebot.User{ID: n.adminChatID}
	if _, err := n.bot.Send(recipient, text, &telebot.SendOptions{}); err != nil {
		n.logger.WithError(err).Warn("failed to deliver telegram alert")
	}
}
