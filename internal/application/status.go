package application

// Status жизненного цикла заявки.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Transition проверяет допустимость перехода статуса.
// Разрешены только pending -> approved и pending -> rejected.
func Transition(from, to Status) error {
	if from != StatusPending {
		return ErrInvalidTransition
	}

	if to != StatusApproved && to != StatusRejected {
		return ErrInvalidTransition
	}

	return nil
}
