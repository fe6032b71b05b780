package dto

// SendEmailRequest is bound from the email query parameter
type SendEmailRequest struct {
	Email string `validate:"required,email"`
}

// SendEmailResponse acknowledges a queued background email
type SendEmailResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}
