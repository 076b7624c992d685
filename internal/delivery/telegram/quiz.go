package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/service"
	"github.com/aliskhannn/safeguard-bot/internal/storage"
)

// startQuiz starts a session or re-sends the current question of a running one.
func (h *Handler) startQuiz(ctx context.Context, chatID int64, user *entities.User) error {
	view, err := h.quizService.Start(ctx, user.ID)
	if errors.Is(err, service.ErrQuizInProgress) {
		view, err = h.quizService.Current(user.ID)
	}
	if err != nil {
		return err
	}

	h.clearQuizKeyboard(chatID)
	h.presentView(chatID, view)
	return nil
}

// presentView sends the current question, or its explanation when the
// session is waiting for Continue.
func (h *Handler) presentView(chatID int64, v service.QuizView) {
	var msg tgbotapi.MessageConfig
	if v.State == entities.QuizExplaining {
		msg = newMessage(chatID, explanationText(v))
		msg.ReplyMarkup = buildContinueKeyboard()
	} else {
		msg = newMessage(chatID, questionText(v))
		msg.ReplyMarkup = buildQuizAnswerKeyboard(v)
	}

	if sent, ok := h.send(msg); ok {
		h.messages.Store(chatID, sent.MessageID)
	}
}

func (h *Handler) handleAnswerCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) {
	chatID := cb.Message.Chat.ID

	position, ok1 := cd.intParam(0)
	option, ok2 := cd.intParam(1)
	if !ok1 || !ok2 {
		h.logger.Warn("invalid answer callback", zap.String("data", cd.Raw))
		h.answerCallback(cb, "")
		return
	}

	user, err := h.userService.ByChat(ctx, chatID)
	if err != nil {
		h.callbackError(cb, err)
		return
	}

	before, err := h.quizService.Current(user.ID)
	if err != nil {
		h.callbackError(cb, err)
		h.removeKeyboard(chatID, cb.Message.MessageID)
		return
	}

	view, err := h.quizService.Answer(ctx, user.ID, position, option)
	switch {
	case errors.Is(err, entities.ErrStaleAnswer), errors.Is(err, entities.ErrNotPresenting):
		h.answerCallback(cb, msgQuestionAnswered)
		return
	case errors.Is(err, entities.ErrInvalidOption):
		h.answerCallback(cb, "")
		return
	case err != nil && view.Result == nil:
		h.callbackError(cb, err)
		return
	}
	h.answerCallback(cb, "")

	msgID := cb.Message.MessageID

	switch view.Outcome {
	case entities.OutcomeRetry:
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, retryText(view), buildQuizAnswerKeyboard(view))
		edit.ParseMode = tgbotapi.ModeMarkdownV2
		h.send(edit)

	case entities.OutcomeFailed:
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, explanationText(view), buildContinueKeyboard())
		edit.ParseMode = tgbotapi.ModeMarkdownV2
		h.send(edit)

	case entities.OutcomeCorrect:
		h.send(newEdit(chatID, msgID, correctText(before, option)))
		h.messages.Delete(chatID)
		h.after(ctx, func() { h.advance(chatID, view, err) })
	}
}

func (h *Handler) handleContinueCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	user, err := h.userService.ByChat(ctx, chatID)
	if err != nil {
		h.callbackError(cb, err)
		return
	}

	view, err := h.quizService.Continue(ctx, user.ID)
	if err != nil && view.Result == nil {
		if errors.Is(err, entities.ErrNotExplaining) {
			h.answerCallback(cb, "")
			return
		}
		h.callbackError(cb, err)
		h.removeKeyboard(chatID, cb.Message.MessageID)
		return
	}
	h.answerCallback(cb, "")

	h.removeKeyboard(chatID, cb.Message.MessageID)
	h.messages.Delete(chatID)
	h.advance(chatID, view, err)
}

func (h *Handler) handleCancelCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	user, err := h.userService.ByChat(ctx, chatID)
	if err != nil {
		h.callbackError(cb, err)
		return
	}

	if err := h.quizService.Cancel(user.ID); err != nil && !errors.Is(err, storage.ErrNoActiveQuiz) {
		h.callbackError(cb, err)
		return
	}
	h.answerCallback(cb, "")

	h.messages.Delete(chatID)
	h.send(newEdit(chatID, cb.Message.MessageID, md(msgQuizCancelled)))
}

// advance shows the next question or the final result.
func (h *Handler) advance(chatID int64, view service.QuizView, finishErr error) {
	if view.Result == nil {
		h.presentView(chatID, view)
		return
	}

	text := resultText(*view.Result, h.passScore)
	if errors.Is(finishErr, service.ErrResultNotPersisted) {
		text += "\n\n" + md(msgResultPending)
	}
	if finishErr != nil {
		h.logger.Warn("quiz finished with errors",
			zap.Int64("chat_id", chatID),
			zap.Error(finishErr),
		)
	}

	msg := newMessage(chatID, text)
	msg.ReplyMarkup = buildQuizResultKeyboard(view.Result.Passed)
	h.send(msg)
}

// after runs fn once the advance delay has passed, unless ctx is done first.
func (h *Handler) after(ctx context.Context, fn func()) {
	if h.advanceDelay <= 0 {
		fn()
		return
	}

	go func() {
		t := time.NewTimer(h.advanceDelay)
		defer t.Stop()

		select {
		case <-ctx.Done():
		case <-t.C:
			fn()
		}
	}()
}

// clearQuizKeyboard removes the answer buttons of the last question sent to the chat.
func (h *Handler) clearQuizKeyboard(chatID int64) {
	if prev, ok := h.messages.Get(chatID); ok {
		h.removeKeyboard(chatID, prev.MessageID)
		h.messages.Delete(chatID)
	}
}

func (h *Handler) removeKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := h.bot.Request(edit); err != nil {
		h.logger.Debug("failed to remove keyboard", zap.Error(err))
	}
}

// callbackError answers a callback with the user-facing text of err.
func (h *Handler) callbackError(cb *tgbotapi.CallbackQuery, err error) {
	if text, ok := userMessage(err); ok {
		h.answerCallback(cb, text)
		return
	}

	h.logger.Error("callback error",
		zap.String("data", cb.Data),
		zap.Error(err),
	)
	h.answerCallback(cb, msgInternalError)
}
