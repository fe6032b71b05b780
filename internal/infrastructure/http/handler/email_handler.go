package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrops-br/products-crud-api/internal/app/dto"
	"github.com/mrops-br/products-crud-api/internal/domain"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/request"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/response"
)

// EmailQueue accepts background email tasks
type EmailQueue interface {
	Enqueue(recipient string) domain.EmailTask
}

// EmailHandler handles the background email endpoint
type EmailHandler struct {
	queue  EmailQueue
	logger *slog.Logger
}

func NewEmailHandler(queue EmailQueue, logger *slog.Logger) *EmailHandler {
	return &EmailHandler{queue: queue, logger: logger}
}

// SendEmail handles POST /send-email/?email=
func (h *EmailHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	req := dto.SendEmailRequest{Email: r.URL.Query().Get("email")}
	if err := request.Validate(&req); err != nil {
		status, detail := response.FromError(err)
		response.Error(w, status, detail)
		return
	}

	task := h.queue.Enqueue(req.Email)
	h.logger.DebugContext(r.Context(), "Email task accepted", slog.String("task_id", task.ID))

	response.JSON(w, http.StatusAccepted, dto.SendEmailResponse{
		Message: "Email is being sent in the background",
		TaskID:  task.ID,
	})
}
