package rest

import (
	"time"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Grade    string `json:"gradeTaught" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	Name          *string `json:"name"`
	GradeTaught   *string `json:"gradeTaught"`
	IntendToTeach *bool   `json:"intendToTeach"`
}

func (r profileRequest) update() entities.ProfileUpdate {
	return entities.ProfileUpdate{
		Name:          r.Name,
		GradeTaught:   r.GradeTaught,
		IntendToTeach: r.IntendToTeach,
	}
}

type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	GradeTaught   string    `json:"gradeTaught"`
	IntendToTeach bool      `json:"intendToTeach"`
	IsAdmin       bool      `json:"isAdmin"`
	ChatLinked    bool      `json:"telegramLinked"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newUserResponse(u *entities.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		GradeTaught:   u.GradeTaught,
		IntendToTeach: u.IntendToTeach,
		IsAdmin:       u.IsAdmin,
		ChatLinked:    u.HasChat(),
		CreatedAt:     u.CreatedAt,
	}
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type dashboardResponse struct {
	User       userResponse          `json:"user"`
	Compliance entities.Compliance   `json:"compliance"`
	DaysLeft   int                   `json:"daysLeft"`
	Attempts   int                   `json:"attempts"`
	History    []entities.TestResult `json:"history"`
}

func newDashboardResponse(d *service.Dashboard) dashboardResponse {
	history := d.History
	if history == nil {
		history = []entities.TestResult{}
	}
	return dashboardResponse{
		User:       newUserResponse(d.User),
		Compliance: d.Compliance,
		DaysLeft:   d.Compliance.DaysLeft(d.Now),
		Attempts:   d.Attempts,
		History:    history,
	}
}

type rosterEntryResponse struct {
	User       userResponse        `json:"user"`
	Compliance entities.Compliance `json:"compliance"`
}

type rosterResponse struct {
	Filter  entities.RosterFilter `json:"filter"`
	Stats   entities.RosterStats  `json:"stats"`
	Entries []rosterEntryResponse `json:"entries"`
}

func newRosterResponse(r *service.RosterReport) rosterResponse {
	entries := make([]rosterEntryResponse, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, rosterEntryResponse{
			User:       newUserResponse(e.User),
			Compliance: e.Compliance,
		})
	}
	return rosterResponse{Filter: r.Filter, Stats: r.Stats, Entries: entries}
}

type reminderResponse struct {
	Recipients int      `json:"recipients"`
	Sent       int      `json:"sent"`
	Failed     []string `json:"failed"`
}

func newReminderResponse(b service.ReminderBatch) reminderResponse {
	failed := make([]string, 0, len(b.Failed))
	for _, u := range b.Failed {
		failed = append(failed, u.Email)
	}
	return reminderResponse{Recipients: len(b.Recipients), Sent: b.Sent(), Failed: failed}
}

type deleteResponse struct {
	Deleted  bool `json:"deleted"`
	Notified bool `json:"notified"`
}

type errorResponse struct {
	Error string `json:"error"`
}
