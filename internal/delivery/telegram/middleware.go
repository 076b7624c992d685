package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/safeguard-bot/internal/service"
	"github.com/aliskhannn/safeguard-bot/internal/storage"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling replies with a user-facing message for known errors
// and logs everything else.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			if text, ok := userMessage(err); ok {
				h.sendText(chatID, text)
				return nil
			}
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendText(chatID, msgInternalError)
		}
		return nil
	}
}

var userErrors = []struct {
	err  error
	text string
}{
	{service.ErrChatNotLinked, msgNotLinked},
	{service.ErrInvalidCredentials, msgInvalidLogin},
	{service.ErrWeakPassword, msgWeakPassword},
	{service.ErrNotAdmin, msgAdminOnly},
	{entities.ErrInvalidEmail, msgInvalidEmail},
	{entities.ErrInvalidName, msgInvalidName},
	{entities.ErrUnknownFilter, msgUnknownFilter},
	{entities.ErrNotEnoughQuestions, msgQuizUnavailable},
	{repository.ErrEmailTaken, msgEmailTaken},
	{repository.ErrChatAlreadyLinked, msgChatTaken},
	{storage.ErrNoActiveQuiz, msgNoActiveQuiz},
}

// userMessage maps an error to the text shown to the user.
func userMessage(err error) (string, bool) {
	for _, ue := range userErrors {
		if errors.Is(err, ue.err) {
			return ue.text, true
		}
	}
	return "", false
}
