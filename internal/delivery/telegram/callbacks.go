package telegram

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb, "")
		return
	}

	cd := decodeCallback(cb.Data)

	switch cd.Action {
	case actionAnswer:
		h.handleAnswerCallback(ctx, cb, cd)
	case actionContinue:
		h.handleContinueCallback(ctx, cb)
	case actionCancel:
		h.handleCancelCallback(ctx, cb)
	case actionStart:
		h.answerCallback(cb, "")
		_ = h.withErrorHandling(h.quizHandler())(ctx, cb.Message.Chat.ID)
	case actionStatus:
		h.answerCallback(cb, "")
		_ = h.withErrorHandling(h.statusHandler())(ctx, cb.Message.Chat.ID)
	case actionRegister:
		h.handleRegisterCallback(ctx, cb, cd)
	case actionProfile:
		h.handleProfileCallback(ctx, cb, cd)
	case actionRoster:
		h.handleRosterCallback(ctx, cb, cd)
	case actionRemind:
		h.handleRemindCallback(ctx, cb)
	case actionDelete:
		h.handleDeleteCallback(ctx, cb, cd)
	default:
		h.logger.Warn("unknown callback", zap.String("data", cb.Data))
		h.answerCallback(cb, "")
	}
}

// handleRegisterCallback completes a registration draft with the chosen grade.
func (h *Handler) handleRegisterCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) {
	chatID := cb.Message.Chat.ID

	idx, ok := cd.intParam(0)
	if !ok || idx < 0 || idx >= len(entities.Grades) {
		h.answerCallback(cb, "")
		return
	}

	draft, ok := h.drafts.Take(chatID)
	if !ok {
		h.answerCallback(cb, msgRegistrationGone)
		h.removeKeyboard(chatID, cb.Message.MessageID)
		return
	}

	user, err := h.userService.Register(ctx, service.RegisterInput{
		Email:    draft.Email,
		Password: draft.Password,
		Name:     draft.Name,
		Grade:    entities.Grades[idx],
		ChatID:   chatID,
	})
	if err != nil {
		h.callbackError(cb, err)
		h.removeKeyboard(chatID, cb.Message.MessageID)
		return
	}
	h.answerCallback(cb, "")

	h.send(newEdit(chatID, cb.Message.MessageID, welcomeText(user)))
}

func (h *Handler) handleProfileCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	user, err := h.userService.ByChat(ctx, chatID)
	if err != nil {
		h.callbackError(cb, err)
		return
	}

	var upd entities.ProfileUpdate

	switch cd.param(0) {
	case profileGrades:
		h.answerCallback(cb, "")
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, md(msgChooseGrade),
			buildGradeKeyboard(func(idx int) string {
				return buildProfileCallback(profileGrade, strconv.Itoa(idx))
			}))
		edit.ParseMode = tgbotapi.ModeMarkdownV2
		h.send(edit)
		return

	case profileGrade:
		idx, ok := cd.intParam(1)
		if !ok || idx < 0 || idx >= len(entities.Grades) {
			h.answerCallback(cb, "")
			return
		}
		grade := entities.Grades[idx]
		upd.GradeTaught = &grade

	case profileTeach:
		intend := !user.IntendToTeach
		upd.IntendToTeach = &intend

	default:
		h.answerCallback(cb, "")
		return
	}

	updated, err := h.userService.UpdateProfile(ctx, user.ID, upd)
	if err != nil {
		h.callbackError(cb, err)
		return
	}
	h.answerCallback(cb, "")

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, profileText(updated), buildProfileKeyboard(updated))
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	h.send(edit)
}

func (h *Handler) handleRosterCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) {
	chatID := cb.Message.Chat.ID

	if _, err := h.requireAdmin(ctx, chatID); err != nil {
		h.callbackError(cb, err)
		return
	}

	filter, err := entities.ParseRosterFilter(cd.param(0))
	if err != nil {
		h.callbackError(cb, err)
		return
	}

	report, err := h.rosterSvc.Roster(ctx, filter)
	if err != nil {
		h.callbackError(cb, err)
		return
	}
	h.answerCallback(cb, "")

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID, rosterText(report), buildRosterKeyboard())
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	h.send(edit)
}

func (h *Handler) handleRemindCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	if _, err := h.requireAdmin(ctx, chatID); err != nil {
		h.callbackError(cb, err)
		return
	}
	h.answerCallback(cb, "")

	_ = h.withErrorHandling(func(ctx context.Context, chatID int64) error {
		return h.sendReminders(ctx, chatID)
	})(ctx, chatID)
}

func (h *Handler) handleDeleteCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	if _, err := h.requireAdmin(ctx, chatID); err != nil {
		h.callbackError(cb, err)
		return
	}
	h.answerCallback(cb, "")

	if cd.param(0) != deleteConfirm {
		h.send(newEdit(chatID, msgID, md(msgDeleteAborted)))
		return
	}

	userID := cd.param(1)
	err := h.rosterSvc.DeleteUser(ctx, userID)

	text := msgDeleted
	switch {
	case err == nil:
	case errors.Is(err, service.ErrDeletedNotNotified):
		text = msgDeletedNoNotice
	default:
		h.logger.Error("delete user failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		text = msgDeleteFailed
	}

	h.send(newEdit(chatID, msgID, md(text)))
}
