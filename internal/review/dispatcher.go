package review

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/otututu/tbank_ref_bot/internal/application"
	"github.com/otututu/tbank_ref_bot/internal/db"
)

// Store - операции хранилища, нужные админским командам.
type Store interface {
	GetByID(id string) (*db.Application, error)
	ListPending() ([]db.Application, error)
	ListAll() ([]db.Application, error)
	UpdateStatus(id string, newStatus application.Status) error
}

// UserNotifier сообщает владельцу заявки итог проверки.
type UserNotifier interface {
	Decision(app db.Application) error
}

// Dispatcher выполняет админские операции над заявками. Все операции
// доступны только одному настроенному админу.
type Dispatcher struct {
	adminChatID int64
	store       Store
	notifier    UserNotifier
}

func New(adminChatID int64, store Store, notifier UserNotifier) *Dispatcher {
	return &Dispatcher{
		adminChatID: adminChatID,
		store:       store,
		notifier:    notifier,
	}
}

func (d *Dispatcher) ListPending(callerID int64) ([]db.Application, error) {
	if callerID != d.adminChatID {
		return nil, application.ErrUnauthorized
	}

	apps, err := d.store.ListPending()
	if err != nil {
		return nil, fmt.Errorf("Dispatcher.ListPending: %w", err)
	}

	return apps, nil
}

func (d *Dispatcher) ListAll(callerID int64) ([]db.Application, error) {
	if callerID != d.adminChatID {
		return nil, application.ErrUnauthorized
	}

	apps, err := d.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("Dispatcher.ListAll: %w", err)
	}

	return apps, nil
}

// Proof возвращает file_id скриншота заявки для пересылки админу.
func (d *Dispatcher) Proof(callerID int64, rawID string) (string, error) {
	if callerID != d.adminChatID {
		return "", application.ErrUnauthorized
	}

	id, err := parseAppID(rawID)
	if err != nil {
		return "", err
	}

	app, err := d.store.GetByID(id)
	if err != nil {
		return "", err
	}

	if app.ProofFileID == "" {
		return "", application.ErrNotFound
	}

	return app.ProofFileID, nil
}

func (d *Dispatcher) Approve(callerID int64, rawID string) (*db.Application, error) {
	return d.decide(callerID, rawID, application.StatusApproved)
}

func (d *Dispatcher) Reject(callerID int64, rawID string) (*db.Application, error) {
	return d.decide(callerID, rawID, application.StatusRejected)
}

// decide переводит заявку в терминальный статус и уведомляет пользователя.
// Статус в базе - источник истины: неудачное уведомление логируется и не
// откатывает переход.
func (d *Dispatcher) decide(callerID int64, rawID string, newStatus application.Status) (*db.Application, error) {
	if callerID != d.adminChatID {
		return nil, application.ErrUnauthorized
	}

	id, err := parseAppID(rawID)
	if err != nil {
		return nil, err
	}

	app, err := d.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := application.Transition(app.Status, newStatus); err != nil {
		return nil, err
	}

	if err := d.store.UpdateStatus(app.ID, newStatus); err != nil {
		return nil, err
	}

	app.Status = newStatus

	go func(notified db.Application) {
		if err := d.notifier.Decision(notified); err != nil {
			log.Printf("Dispatcher: decision notification for %s failed: %v", notified.ID, err)
		}
	}(*app)

	return app, nil
}

func parseAppID(rawID string) (string, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return "", application.ErrBadArgument
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", application.ErrBadArgument
	}

	return id.String(), nil
}
