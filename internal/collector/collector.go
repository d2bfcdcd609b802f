package collector

import (
	"errors"
	"fmt"

	"github.com/AlekSi/pointer"
	log "github.com/sirupsen/logrus"

	"github.com/otututu/tbank_ref_bot/internal/application"
	"github.com/otututu/tbank_ref_bot/internal/db"
)

// Store - операции хранилища, нужные сборщику заявок.
type Store interface {
	Create(app *db.Application) error
	GetPendingByUserID(userID int64) (*db.Application, error)
	UpdateProof(id string, fileID string) error
	UpdateContactInfo(id string, contactInfo string) error
}

// Notifier получает заполненную заявку, когда она готова к проверке.
type Notifier interface {
	ReadyForReview(app db.Application) error
}

// Profile - снимок профиля пользователя на момент отправки.
type Profile struct {
	UserID      int64
	DisplayName string
	Handle      string
}

// Collector сводит скриншот и реквизиты, приходящие в любом порядке,
// в одну заявку пользователя.
type Collector struct {
	store    Store
	notifier Notifier
}

func New(store Store, notifier Notifier) *Collector {
	return &Collector{
		store:    store,
		notifier: notifier,
	}
}

// SubmitProof обрабатывает присланный скриншот. Пока реквизиты не
// получены, повторный скриншот перезаписывает прежний. Вторую активную
// заявку завести нельзя.
func (c *Collector) SubmitProof(profile Profile, fileID string) (*db.Application, error) {
	app, err := c.store.GetPendingByUserID(profile.UserID)
	if err != nil && !errors.Is(err, application.ErrNotFound) {
		return nil, fmt.Errorf("Collector.SubmitProof: %w", err)
	}

	if app == nil {
		app = &db.Application{
			UserID:      profile.UserID,
			DisplayName: profile.DisplayName,
			Handle:      profile.Handle,
			ProofFileID: fileID,
		}

		if err := c.store.Create(app); err != nil {
			if errors.Is(err, application.ErrDuplicateActive) {
				return nil, application.ErrDuplicateActive
			}

			return nil, fmt.Errorf("Collector.SubmitProof: %w", err)
		}

		return app, nil
	}

	if app.Ready() {
		// Заявка уже ушла админу, скриншот больше не меняем.
		return nil, application.ErrDuplicateActive
	}

	if err := c.store.UpdateProof(app.ID, fileID); err != nil {
		return nil, fmt.Errorf("Collector.SubmitProof: %w", err)
	}

	app.ProofFileID = fileID

	return app, nil
}

// SubmitContactInfo обрабатывает текст с реквизитами. Без скриншота
// заявка не создается. После заполнения заявки уведомляем админа
// ровно один раз.
func (c *Collector) SubmitContactInfo(userID int64, contactInfo string) (*db.Application, error) {
	app, err := c.store.GetPendingByUserID(userID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return nil, application.ErrMissingProof
		}

		return nil, fmt.Errorf("Collector.SubmitContactInfo: %w", err)
	}

	if app.Ready() {
		// Реквизиты пишутся один раз.
		return nil, application.ErrDuplicateActive
	}

	if err := c.store.UpdateContactInfo(app.ID, contactInfo); err != nil {
		return nil, fmt.Errorf("Collector.SubmitContactInfo: %w", err)
	}

	app.ContactInfo = pointer.ToString(contactInfo)

	// Уведомление админа не должно блокировать и ронять обработку сообщения.
	go func(notified db.Application) {
		if err := c.notifier.ReadyForReview(notified); err != nil {
			log.Printf("Collector: ready-for-review notification for %s failed: %v", notified.ID, err)
		}
	}(*app)

	return app, nil
}
