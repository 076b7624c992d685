package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/safeguard-bot/internal/service"
	"github.com/aliskhannn/safeguard-bot/internal/storage"
)

func (h *Handler) startHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		user, err := h.userService.ByChat(ctx, chatID)
		if err != nil && !errors.Is(err, service.ErrChatNotLinked) {
			return err
		}
		h.send(newMessage(chatID, welcomeText(user)))
		return nil
	}
}

// registerHandler collects e-mail, password and name, then asks for the grade.
func (h *Handler) registerHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, err := h.userService.ByChat(ctx, chatID); err == nil {
			h.sendText(chatID, msgAlreadyLinked)
			return nil
		} else if !errors.Is(err, service.ErrChatNotLinked) {
			return err
		}

		fields := strings.Fields(args)
		if len(fields) < 3 {
			h.sendText(chatID, msgUseRegister)
			return nil
		}

		email, err := entities.NormalizeEmail(fields[0])
		if err != nil {
			return err
		}
		if len(fields[1]) < service.MinPasswordLength {
			return service.ErrWeakPassword
		}

		h.drafts.Store(chatID, storage.RegistrationDraft{
			Email:    email,
			Password: fields[1],
			Name:     strings.Join(fields[2:], " "),
		})

		msg := newMessage(chatID, md(msgChooseGrade))
		msg.ReplyMarkup = buildGradeKeyboard(buildRegisterCallback)
		h.send(msg)
		return nil
	}
}

func (h *Handler) linkHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := strings.Fields(args)
		if len(fields) != 2 {
			h.sendText(chatID, msgUseLink)
			return nil
		}

		user, err := h.userService.LinkChat(ctx, fields[0], fields[1], chatID)
		if err != nil {
			return err
		}

		h.send(newMessage(chatID, welcomeText(user)))
		return nil
	}
}

func (h *Handler) quizHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		user, err := h.userService.ByChat(ctx, chatID)
		if err != nil {
			return err
		}
		return h.startQuiz(ctx, chatID, user)
	}
}

func (h *Handler) cancelHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		user, err := h.userService.ByChat(ctx, chatID)
		if err != nil {
			return err
		}
		if err := h.quizService.Cancel(user.ID); err != nil {
			return err
		}

		h.clearQuizKeyboard(chatID)
		h.sendText(chatID, msgQuizCancelled)
		return nil
	}
}

func (h *Handler) statusHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		user, err := h.userService.ByChat(ctx, chatID)
		if err != nil {
			return err
		}
		return h.sendStatus(ctx, chatID, user)
	}
}

func (h *Handler) sendStatus(ctx context.Context, chatID int64, user *entities.User) error {
	dash, err := h.userService.Status(ctx, user.ID)
	if err != nil {
		return err
	}

	msg := newMessage(chatID, dashboardText(dash, h.quizService.HasPending(user.ID)))
	msg.ReplyMarkup = buildStatusKeyboard(dash.Compliance)
	h.send(msg)
	return nil
}

func (h *Handler) profileHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		user, err := h.userService.ByChat(ctx, chatID)
		if err != nil {
			return err
		}

		msg := newMessage(chatID, profileText(user))
		msg.ReplyMarkup = buildProfileKeyboard(user)
		h.send(msg)
		return nil
	}
}

func (h *Handler) nameHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if args == "" {
			h.sendText(chatID, msgUseName)
			return nil
		}

		user, err := h.userService.ByChat(ctx, chatID)
		if err != nil {
			return err
		}

		updated, err := h.userService.UpdateProfile(ctx, user.ID, entities.ProfileUpdate{Name: &args})
		if err != nil {
			return err
		}

		msg := newMessage(chatID, profileText(updated))
		msg.ReplyMarkup = buildProfileKeyboard(updated)
		h.send(msg)
		return nil
	}
}

func (h *Handler) rosterHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, err := h.requireAdmin(ctx, chatID); err != nil {
			return err
		}

		filter, err := entities.ParseRosterFilter(strings.ToLower(args))
		if err != nil {
			return err
		}

		report, err := h.rosterSvc.Roster(ctx, filter)
		if err != nil {
			return err
		}

		msg := newMessage(chatID, rosterText(report))
		msg.ReplyMarkup = buildRosterKeyboard()
		h.send(msg)
		return nil
	}
}

func (h *Handler) remindHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, err := h.requireAdmin(ctx, chatID); err != nil {
			return err
		}
		return h.sendReminders(ctx, chatID)
	}
}

func (h *Handler) sendReminders(ctx context.Context, chatID int64) error {
	batch, err := h.rosterSvc.SendReminders(ctx)
	if err != nil && !errors.Is(err, service.ErrNotificationNotSent) {
		return err
	}
	h.send(newMessage(chatID, reminderBatchText(batch)))
	return nil
}

func (h *Handler) deleteHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, err := h.requireAdmin(ctx, chatID); err != nil {
			return err
		}
		if args == "" {
			h.sendText(chatID, msgUseDelete)
			return nil
		}

		email, err := entities.NormalizeEmail(args)
		if err != nil {
			return err
		}

		target, err := h.admins.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				h.sendText(chatID, msgUserNotFound)
				return nil
			}
			return err
		}
		if target.IsAdmin {
			h.sendText(chatID, msgCannotDeleteAdmin)
			return nil
		}

		msg := newMessage(chatID, confirmDeleteText(target))
		msg.ReplyMarkup = buildDeleteKeyboard(target.ID)
		h.send(msg)
		return nil
	}
}

func (h *Handler) requireAdmin(ctx context.Context, chatID int64) (*entities.User, error) {
	user, err := h.userService.ByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, service.ErrNotAdmin
	}
	return user, nil
}
