package application

import "errors"

var (
	// ErrDuplicateActive - у пользователя уже есть активная заявка.
	ErrDuplicateActive = errors.New("application: active application already exists")

	// ErrNotFound - заявка не найдена.
	ErrNotFound = errors.New("application: not found")

	// ErrInvalidTransition - заявка уже в терминальном статусе.
	ErrInvalidTransition = errors.New("application: invalid status transition")

	// ErrMissingProof - реквизиты присланы раньше скриншота.
	ErrMissingProof = errors.New("application: proof not submitted yet")

	// ErrUnauthorized - вызов админской операции не админом.
	ErrUnauthorized = errors.New("application: unauthorized")

	// ErrBadArgument - некорректный id заявки в команде.
	ErrBadArgument = errors.New("application: bad argument")
)
