package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/otututu/tbank_ref_bot/internal/application"
	"github.com/otututu/tbank_ref_bot/internal/db"
)

// Notifier отправляет исходящие уведомления через bot API: админу -
// заполненные заявки, пользователям - итог проверки.
type Notifier struct {
	botAPI          *tgbotapi.BotAPI
	adminChatID     int64
	supportUsername string
}

func NewNotifier(botAPI *tgbotapi.BotAPI, adminChatID int64, supportUsername string) *Notifier {
	return &Notifier{
		botAPI:          botAPI,
		adminChatID:     adminChatID,
		supportUsername: supportUsername,
	}
}

func (n *Notifier) ReadyForReview(app db.Application) error {
	text := "Новая заявка готова к проверке:\n\n" + formatApplication(app) +
		"\n\nКоманды: /proof <id>, /approve <id>, /reject <id>"

	if _, err := n.botAPI.Send(tgbotapi.NewMessage(n.adminChatID, text)); err != nil {
		return fmt.Errorf("Notifier.ReadyForReview: %w", err)
	}

	photo := tgbotapi.NewPhoto(n.adminChatID, tgbotapi.FileID(app.ProofFileID))
	photo.Caption = "Скриншот по заявке " + app.ID

	if _, err := n.botAPI.Send(photo); err != nil {
		return fmt.Errorf("Notifier.ReadyForReview: %w", err)
	}

	return nil
}

func (n *Notifier) Decision(app db.Application) error {
	var text string

	switch app.Status {
	case application.StatusApproved:
		text = "🎉 Ваша заявка одобрена! 500₽ будут отправлены на указанные реквизиты в течение 24 часов."
	case application.StatusRejected:
		text = fmt.Sprintf("К сожалению, ваша заявка отклонена. По вопросам пишите %s", n.supportUsername)
	default:
		return fmt.Errorf("Notifier.Decision: unexpected status %s for %s", app.Status, app.ID)
	}

	if _, err := n.botAPI.Send(tgbotapi.NewMessage(app.UserID, text)); err != nil {
		return fmt.Errorf("Notifier.Decision: %w", err)
	}

	return nil
}
