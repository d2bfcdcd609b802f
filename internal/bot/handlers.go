package bot

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/otututu/tbank_ref_bot/internal/application"
	"github.com/otututu/tbank_ref_bot/internal/collector"
	"github.com/otututu/tbank_ref_bot/internal/config"
	"github.com/otututu/tbank_ref_bot/internal/db"
	"github.com/otututu/tbank_ref_bot/internal/review"
)

type BotService struct {
	botAPI          *tgbotapi.BotAPI
	collector       *collector.Collector
	review          *review.Dispatcher
	refLink         string
	supportUsername string

	callbacks map[string]func(*tgbotapi.CallbackQuery)
	commands  map[string]func(*tgbotapi.Message)
}

func New(
	botAPI *tgbotapi.BotAPI,
	coll *collector.Collector,
	dispatcher *review.Dispatcher,
	cfg *config.Config,
) *BotService {
	b := &BotService{
		botAPI:          botAPI,
		collector:       coll,
		review:          dispatcher,
		refLink:         cfg.RefLink,
		supportUsername: cfg.SupportUsername,
	}

	b.callbacks = map[string]func(*tgbotapi.CallbackQuery){
		callbackShowTerms:   b.handleShowTerms,
		callbackGetLink:     b.handleGetLink,
		callbackInstruction: b.handleInstruction,
		callbackBackToStart: b.handleBackToStart,
	}

	b.commands = map[string]func(*tgbotapi.Message){
		"start":   b.handleStart,
		"help":    b.handleHelp,
		"pending": b.handleListPending,
		"all":     b.handleListAll,
		"proof":   b.handleProofCommand,
		"approve": b.handleApprove,
		"reject":  b.handleReject,
	}

	return b
}

func (b *BotService) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.botAPI.GetUpdatesChan(u)

	for update := range updates {
		b.handleUpdate(update)
	}
}

// handleUpdate разбирает одно входящее событие. Любая ошибка обработчика
// уходит пользователю ответом и в лог, но не роняет цикл.
func (b *BotService) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	msg := update.Message

	switch {
	case msg.IsCommand():
		b.handleCommand(msg)
	case len(msg.Photo) > 0 || msg.Document != nil:
		b.handleProofMessage(msg)
	case msg.Text != "":
		b.handleContactInfoMessage(msg)
	}
}

// proofFileID достает file_id скриншота: сжатое фото или картинка,
// отправленная файлом.
func proofFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}

	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}

	return "", false
}

func (b *BotService) handleCallback(query *tgbotapi.CallbackQuery) {
	if _, err := b.botAPI.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("failed to answer callback query: %v", err)
	}

	// У callback из inline-сообщения Message может отсутствовать,
	// а обработчикам меню нужно сообщение для редактирования.
	if query.Message == nil {
		log.Printf("callback %q without attached message from user %d", query.Data, query.From.ID)
		return
	}

	handler, ok := b.callbacks[query.Data]
	if !ok {
		log.Printf("unknown callback tag %q from chat %d", query.Data, query.Message.Chat.ID)
		return
	}

	handler(query)
}

func (b *BotService) handleCommand(msg *tgbotapi.Message) {
	handler, ok := b.commands[msg.Command()]
	if !ok {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Неизвестная команда. Список команд: /help"))
		return
	}

	handler(msg)
}

func (b *BotService) handleStart(msg *tgbotapi.Message) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, welcomeText(msg.From.FirstName))
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = welcomeKeyboard(b.supportUsername)
	b.send(reply)
}

func (b *BotService) handleHelp(msg *tgbotapi.Message) {
	text := fmt.Sprintf(
		"1. Нажмите /start и пройдите по шагам\n"+
			"2. Оформите карту по ссылке и совершите покупку от 500₽\n"+
			"3. Пришлите сюда скриншот покупки и реквизиты для выплаты\n\n"+
			"Вопросы: %s", b.supportUsername)
	b.send(tgbotapi.NewMessage(msg.Chat.ID, text))
}

func (b *BotService) handleShowTerms(query *tgbotapi.CallbackQuery) {
	b.editMenu(query, termsText, termsKeyboard())
}

func (b *BotService) handleGetLink(query *tgbotapi.CallbackQuery) {
	b.editMenu(query, linkText(b.refLink), linkKeyboard(b.supportUsername))
}

func (b *BotService) handleInstruction(query *tgbotapi.CallbackQuery) {
	b.editMenu(query, instructionText, instructionKeyboard(b.supportUsername))
}

func (b *BotService) handleBackToStart(query *tgbotapi.CallbackQuery) {
	b.editMenu(query, welcomeText(query.From.FirstName), welcomeKeyboard(b.supportUsername))
}

func (b *BotService) editMenu(query *tgbotapi.CallbackQuery, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(query.Message.Chat.ID, query.Message.MessageID, text, markup)
	edit.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.botAPI.Send(edit); err != nil {
		log.Printf("failed to edit menu message in chat %d: %v", query.Message.Chat.ID, err)
	}
}

func (b *BotService) handleProofMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	fileID, ok := proofFileID(msg)
	if !ok {
		b.send(tgbotapi.NewMessage(chatID, "Пришлите скриншот покупки фотографией или картинкой-файлом."))
		return
	}

	profile := collector.Profile{
		UserID:      msg.From.ID,
		DisplayName: msg.From.FirstName,
		Handle:      msg.From.UserName,
	}

	if _, err := b.collector.SubmitProof(profile, fileID); err != nil {
		if errors.Is(err, application.ErrDuplicateActive) {
			b.send(tgbotapi.NewMessage(chatID, "Ваша заявка уже на проверке. Дождитесь решения."))
			return
		}

		b.replyError(chatID, err)
		return
	}

	b.send(tgbotapi.NewMessage(chatID, "📸 Скриншот получен! Теперь пришлите реквизиты для выплаты (номер карты или телефона)."))
}

func (b *BotService) handleContactInfoMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	_, err := b.collector.SubmitContactInfo(msg.From.ID, strings.TrimSpace(msg.Text))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrMissingProof):
			b.send(tgbotapi.NewMessage(chatID, "Сначала пришлите скриншот покупки. Подробнее: /start"))
		case errors.Is(err, application.ErrDuplicateActive):
			b.send(tgbotapi.NewMessage(chatID, "Ваша заявка уже на проверке. Дождитесь решения."))
		default:
			b.replyError(chatID, err)
		}
		return
	}

	b.send(tgbotapi.NewMessage(chatID, "✅ Заявка принята! Выплата производится в течение 24 часов после проверки."))
}

func (b *BotService) handleListPending(msg *tgbotapi.Message) {
	apps, err := b.review.ListPending(msg.From.ID)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}

	b.sendApplicationList(msg.Chat.ID, apps, "Активных заявок нет")
}

func (b *BotService) handleListAll(msg *tgbotapi.Message) {
	apps, err := b.review.ListAll(msg.From.ID)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}

	b.sendApplicationList(msg.Chat.ID, apps, "Заявок пока нет")
}

func (b *BotService) handleProofCommand(msg *tgbotapi.Message) {
	fileID, err := b.review.Proof(msg.From.ID, msg.CommandArguments())
	if err != nil {
		if errors.Is(err, application.ErrBadArgument) {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, "Использование: /proof <id заявки>"))
			return
		}

		b.replyError(msg.Chat.ID, err)
		return
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileID(fileID))
	photo.Caption = "Скриншот по заявке " + strings.TrimSpace(msg.CommandArguments())
	b.send(photo)
}

func (b *BotService) handleApprove(msg *tgbotapi.Message) {
	app, err := b.review.Approve(msg.From.ID, msg.CommandArguments())
	if err != nil {
		if errors.Is(err, application.ErrBadArgument) {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, "Использование: /approve <id заявки>"))
			return
		}

		b.replyError(msg.Chat.ID, err)
		return
	}

	b.send(tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("Заявка %s одобрена, пользователь уведомлен", app.ID)))
}

func (b *BotService) handleReject(msg *tgbotapi.Message) {
	app, err := b.review.Reject(msg.From.ID, msg.CommandArguments())
	if err != nil {
		if errors.Is(err, application.ErrBadArgument) {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, "Использование: /reject <id заявки>"))
			return
		}

		b.replyError(msg.Chat.ID, err)
		return
	}

	b.send(tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("Заявка %s отклонена, пользователь уведомлен", app.ID)))
}

func (b *BotService) sendApplicationList(chatID int64, apps []db.Application, emptyText string) {
	if len(apps) == 0 {
		b.send(tgbotapi.NewMessage(chatID, emptyText))
		return
	}

	var sb strings.Builder
	for i, app := range apps {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString(formatApplication(app))
	}

	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}

func formatApplication(app db.Application) string {
	handle := app.Handle
	if handle == "" {
		handle = "нет username"
	}

	contactInfo := "не указаны"
	if app.ContactInfo != nil && *app.ContactInfo != "" {
		contactInfo = *app.ContactInfo
	}

	return fmt.Sprintf(
		"Заявка %s\nОт: %s (@%s, user_id %d)\nРеквизиты: %s\nСтатус: %s\nСоздана: %s",
		app.ID, app.DisplayName, handle, app.UserID, contactInfo, app.Status,
		app.CreatedAt.Format("02.01.2006 15:04"),
	)
}

// replyError переводит ошибку ядра в ответ пользователю. Неизвестные
// ошибки (недоступная база и т.п.) логируются и превращаются в общий
// совет повторить позже.
func (b *BotService) replyError(chatID int64, err error) {
	var text string

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		text = "Доступ запрещен"
	case errors.Is(err, application.ErrNotFound):
		text = "Заявка не найдена"
	case errors.Is(err, application.ErrInvalidTransition):
		text = "Заявка уже проверена, статус изменить нельзя"
	default:
		log.Printf("handler error for chat %d: %v", chatID, err)
		text = "Произошла ошибка. Попробуйте позже."
	}

	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *BotService) send(c tgbotapi.Chattable) {
	if _, err := b.botAPI.Send(c); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
