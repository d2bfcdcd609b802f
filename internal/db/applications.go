package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/otututu/tbank_ref_bot/internal/application"
)

type Application struct {
	ID          string             `db:"id"`
	UserID      int64              `db:"user_id"`
	DisplayName string             `db:"display_name"`
	Handle      string             `db:"handle"`
	ProofFileID string             `db:"proof_file_id"`
	ContactInfo *string            `db:"contact_info"`
	Status      application.Status `db:"status"`
	CreatedAt   time.Time          `db:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at"`
}

// Ready - заявка заполнена (есть и скриншот, и реквизиты) и ждет проверки.
func (a *Application) Ready() bool {
	return a.ProofFileID != "" && a.ContactInfo != nil && *a.ContactInfo != ""
}

type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
	}
}

// Create вставляет новую pending заявку. Частичный уникальный индекс по
// (user_id) WHERE status = 'pending' гарантирует не больше одной активной
// заявки на пользователя даже при одновременных вставках.
func (r *ApplicationRepository) Create(app *Application) error {
	app.ID = uuid.New().String()
	app.Status = application.StatusPending

	err := r.db.QueryRow(`
	    INSERT INTO applications
		(id, user_id, display_name, handle, proof_file_id, contact_info, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING created_at, updated_at
	`,
		app.ID,
		app.UserID,
		app.DisplayName,
		app.Handle,
		app.ProofFileID,
		app.ContactInfo,
	).Scan(&app.CreatedAt, &app.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return application.ErrDuplicateActive
		}

		return fmt.Errorf("ApplicationRepository.Create: %w", err)
	}

	return nil
}

func (r *ApplicationRepository) GetByID(id string) (*Application, error) {
	var app Application

	err := r.db.Get(&app, `
	    SELECT * FROM applications
		WHERE id = $1
	`, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, application.ErrNotFound
		}

		return nil, fmt.Errorf("ApplicationRepository.GetByID: %w", err)
	}

	return &app, nil
}

func (r *ApplicationRepository) GetPendingByUserID(userID int64) (*Application, error) {
	var app Application

	err := r.db.Get(&app, `
	    SELECT * FROM applications
		WHERE user_id = $1 AND status = 'pending'
	`, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, application.ErrNotFound
		}

		return nil, fmt.Errorf("ApplicationRepository.GetPendingByUserID: %w", err)
	}

	return &app, nil
}

func (r *ApplicationRepository) ListPending() ([]Application, error) {
	var apps []Application

	err := r.db.Select(&apps, `
	    SELECT * FROM applications
		WHERE status = 'pending'
		ORDER BY created_at DESC
	`)

	if err != nil {
		return nil, fmt.Errorf("ApplicationRepository.ListPending: %w", err)
	}

	return apps, nil
}

func (r *ApplicationRepository) ListAll() ([]Application, error) {
	var apps []Application

	err := r.db.Select(&apps, `
	    SELECT * FROM applications
		ORDER BY created_at DESC
	`)

	if err != nil {
		return nil, fmt.Errorf("ApplicationRepository.ListAll: %w", err)
	}

	return apps, nil
}

// UpdateProof перезаписывает скриншот активной заявки.
func (r *ApplicationRepository) UpdateProof(id string, fileID string) error {
	res, err := r.db.Exec(`
	    UPDATE applications
		SET proof_file_id = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = 'pending'
	`, fileID, id)

	if err != nil {
		return fmt.Errorf("ApplicationRepository.UpdateProof: %w", err)
	}

	return r.checkUpdated(res, id, "ApplicationRepository.UpdateProof")
}

// UpdateContactInfo записывает реквизиты. После терминального статуса
// реквизиты менять нельзя.
func (r *ApplicationRepository) UpdateContactInfo(id string, contactInfo string) error {
	res, err := r.db.Exec(`
	    UPDATE applications
		SET contact_info = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = 'pending'
	`, contactInfo, id)

	if err != nil {
		return fmt.Errorf("ApplicationRepository.UpdateContactInfo: %w", err)
	}

	return r.checkUpdated(res, id, "ApplicationRepository.UpdateContactInfo")
}

// UpdateStatus переводит заявку из pending в терминальный статус.
// Условие status = 'pending' в WHERE не дает перезаписать уже
// проверенную заявку.
func (r *ApplicationRepository) UpdateStatus(id string, newStatus application.Status) error {
	res, err := r.db.Exec(`
	    UPDATE applications
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = 'pending'
	`, newStatus, id)

	if err != nil {
		return fmt.Errorf("ApplicationRepository.UpdateStatus: %w", err)
	}

	return r.checkUpdated(res, id, "ApplicationRepository.UpdateStatus")
}

// checkUpdated различает "заявки нет" и "заявка уже в терминальном статусе",
// когда guarded UPDATE не затронул ни одной строки.
func (r *ApplicationRepository) checkUpdated(res sql.Result, id string, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows > 0 {
		return nil
	}

	var exists bool
	err = r.db.Get(&exists, `
	    SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)
	`, id)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return application.ErrNotFound
	}

	return application.ErrInvalidTransition
}
