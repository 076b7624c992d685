package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

// Handler serves the account and administration API.
type Handler struct {
	users  UserService
	roster RosterService
	tokens *TokenIssuer
	logger *zap.Logger
}

func NewHandler(users UserService, roster RosterService, tokens *TokenIssuer, logger *zap.Logger) *Handler {
	return &Handler{users: users, roster: roster, tokens: tokens, logger: logger}
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Grade:    req.Grade,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *entities.User) {
	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(status, tokenResponse{Token: token, ExpiresAt: expires, User: newUserResponse(user)})
}

// Me returns the caller's certification dashboard.
func (h *Handler) Me(c *gin.Context) {
	dash, err := h.users.Status(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newDashboardResponse(dash))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID(c), req.update())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) Roster(c *gin.Context) {
	filter, err := entities.ParseRosterFilter(c.Query("filter"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	report, err := h.roster.Roster(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newRosterResponse(report))
}

// SendReminders reminds every outstanding staff member who intends to teach.
// Partial delivery is reported in the body, not as an error status.
func (h *Handler) SendReminders(c *gin.Context) {
	batch, err := h.roster.SendReminders(c.Request.Context())
	if err != nil && !errors.Is(err, service.ErrNotificationNotSent) {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newReminderResponse(batch))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, h.logger, repository.ErrUserNotFound)
		return
	}

	target, err := h.users.Get(ctx, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if target.IsAdmin {
		writeError(c, h.logger, ErrCannotDeleteAdmin)
		return
	}

	err = h.roster.DeleteUser(ctx, id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, deleteResponse{Deleted: true, Notified: true})
	case errors.Is(err, service.ErrDeletedNotNotified):
		c.JSON(http.StatusOK, deleteResponse{Deleted: true, Notified: false})
	default:
		writeError(c, h.logger, err)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
