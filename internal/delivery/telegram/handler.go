package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/storage"
)

type Handler struct {
	bot          Sender
	logger       *zap.Logger
	userService  UserService
	quizService  QuizService
	rosterSvc    RosterService
	admins       Admins
	messages     *storage.MessageStorage
	drafts       *storage.RegistrationStorage
	passScore    int
	advanceDelay time.Duration
}

func NewHandler(
	bot Sender,
	logger *zap.Logger,
	userService UserService,
	quizService QuizService,
	rosterSvc RosterService,
	admins Admins,
	messages *storage.MessageStorage,
	drafts *storage.RegistrationStorage,
	passScore int,
	advanceDelay time.Duration,
) *Handler {
	return &Handler{
		bot:          bot,
		logger:       logger,
		userService:  userService,
		quizService:  quizService,
		rosterSvc:    rosterSvc,
		admins:       admins,
		messages:     messages,
		drafts:       drafts,
		passScore:    passScore,
		advanceDelay: advanceDelay,
	}
}

// Commands lists the bot commands shown in the Telegram menu.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "quiz", Description: "Take the certification test"},
		{Command: "status", Description: "Your certification status"},
		{Command: "profile", Description: "View and edit your profile"},
		{Command: "register", Description: "Create an account: /register email password full name"},
		{Command: "link", Description: "Link an existing account: /link email password"},
		{Command: "cancel", Description: "Cancel the current quiz"},
		{Command: "roster", Description: "Staff compliance (admins)"},
		{Command: "help", Description: "Help"},
	}
}

// Run processes updates until ctx is done or the channel is closed.
func (h *Handler) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("command", msg.Command()),
	)

	if !msg.IsCommand() {
		h.send(newMessage(chatID, md(msgUnknownCommand)))
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		_ = h.withErrorHandling(h.startHandler())(ctx, chatID)

	case "help":
		h.send(newMessage(chatID, md(msgHelp)))

	case "register":
		h.deleteMessage(chatID, msg.MessageID)
		_ = h.withErrorHandling(h.registerHandler(args))(ctx, chatID)

	case "link":
		h.deleteMessage(chatID, msg.MessageID)
		_ = h.withErrorHandling(h.linkHandler(args))(ctx, chatID)

	case "quiz":
		_ = h.withErrorHandling(h.quizHandler())(ctx, chatID)

	case "cancel":
		_ = h.withErrorHandling(h.cancelHandler())(ctx, chatID)

	case "status":
		_ = h.withErrorHandling(h.statusHandler())(ctx, chatID)

	case "profile":
		_ = h.withErrorHandling(h.profileHandler())(ctx, chatID)

	case "name":
		_ = h.withErrorHandling(h.nameHandler(args))(ctx, chatID)

	case "roster":
		_ = h.withErrorHandling(h.rosterHandler(args))(ctx, chatID)

	case "remind":
		_ = h.withErrorHandling(h.remindHandler())(ctx, chatID)

	case "delete":
		_ = h.withErrorHandling(h.deleteHandler(args))(ctx, chatID)

	default:
		h.send(newMessage(chatID, md(msgUnknownCommand)))
	}
}

func (h *Handler) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	sent, err := h.bot.Send(c)
	if err != nil {
		h.logger.Error("failed to send telegram message", zap.Error(err))
		return tgbotapi.Message{}, false
	}
	return sent, true
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(newMessage(chatID, md(text)))
}

func (h *Handler) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.logger.Debug("callback answer failed", zap.Error(err))
	}
}

// deleteMessage removes a user message, used for commands that carry a password.
func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		h.logger.Debug("failed to delete message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
