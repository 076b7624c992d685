// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

// Error and status messages.
const (
	msgInternalError     = "Something went wrong. Please try again later."
	msgUnknownCommand    = "Unknown command. Use /help to see what I can do."
	msgNotLinked         = "This chat is not linked to an account yet.\n\nUse /register <email> <password> <full name> to create one, or /link <email> <password> if you already have an account."
	msgUseRegister       = "Usage: /register <email> <password> <full name>"
	msgUseLink           = "Usage: /link <email> <password>"
	msgUseName           = "Usage: /name <full name>"
	msgUseDelete         = "Usage: /delete <email>"
	msgAlreadyLinked     = "This chat is already linked to an account."
	msgChatTaken         = "This chat is already linked to another account."
	msgEmailTaken        = "An account with this e-mail already exists. Use /link to connect it."
	msgInvalidLogin      = "Invalid e-mail or password."
	msgWeakPassword      = "The password must be at least 8 characters long."
	msgInvalidEmail      = "That does not look like a valid e-mail address."
	msgInvalidName       = "Please provide your full name."
	msgRegistrationGone  = "Your registration expired. Please send /register again."
	msgChooseGrade       = "Which class do you teach? Choose one below."
	msgAdminOnly         = "This command is only available to administrators."
	msgNoActiveQuiz      = "You have no quiz in progress. Send /quiz to start one."
	msgQuestionAnswered  = "This question has already been answered."
	msgQuizCancelled     = "Quiz cancelled. No result was recorded."
	msgQuizUnavailable   = "The quiz is unavailable right now. Please contact an administrator."
	msgResultPending     = "⚠️ Your result could not be saved yet. It is kept and will be saved automatically."
	msgUserNotFound      = "No user with that e-mail."
	msgDeleteAborted     = "Deletion cancelled."
	msgDeleted           = "The account was deleted and the user was notified."
	msgDeletedNoNotice   = "The account was deleted, but the notification could not be delivered."
	msgDeleteFailed      = "The account could not be deleted. Please try again."
	msgCannotDeleteAdmin = "Administrator accounts cannot be deleted from the bot."
	msgUnknownFilter     = "Unknown filter. Use all, outstanding or passed."
)

const msgHelp = `Child Protection Certification

/quiz - take the 20 question knowledge check
/status - your certification status and history
/profile - view and edit your profile
/name <full name> - change your name
/cancel - abandon the current quiz

Administrators:
/roster [all|outstanding|passed] - staff compliance
/remind - remind outstanding staff
/delete <email> - remove an account`

const dateLayout = "2 Jan 2006 15:04 MST"

var optionLetters = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

func optionLetter(i int) string {
	if i < len(optionLetters) {
		return optionLetters[i]
	}
	return fmt.Sprint(i + 1)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func welcomeText(user *entities.User) string {
	var sb strings.Builder

	sb.WriteString(bold("Child Protection Certification"))
	sb.WriteString("\n\n")

	if user == nil {
		sb.WriteString(md("Every member of the children's ministry must pass the child protection knowledge check once a year."))
		sb.WriteString("\n\n")
		sb.WriteString(md(msgNotLinked))
		return sb.String()
	}

	sb.WriteString(md(fmt.Sprintf("Welcome, %s!", user.Name)))
	sb.WriteString("\n\n")
	sb.WriteString(md(msgHelp))
	return sb.String()
}

// questionHeader renders the question with its lettered options.
func questionHeader(v service.QuizView) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("Question %d of %d", v.Position+1, v.Total)))
	sb.WriteString("\n\n")
	sb.WriteString(md(v.Question.Text))
	sb.WriteString("\n")

	for i, opt := range v.Question.Options {
		sb.WriteString("\n")
		sb.WriteString(bold(optionLetter(i) + "."))
		sb.WriteString(" ")
		sb.WriteString(md(opt))
	}

	return sb.String()
}

func questionText(v service.QuizView) string {
	return questionHeader(v)
}

func retryText(v service.QuizView) string {
	left := v.MaxAttempts - v.WrongAttempts
	return questionHeader(v) + "\n\n" + md(fmt.Sprintf("❌ Incorrect. Try again, %d attempt(s) left.", left))
}

// correctText renders the answered question; answered is the view it was shown in.
func correctText(answered service.QuizView, option int) string {
	q := answered.Question
	return questionHeader(answered) + "\n\n" + md(fmt.Sprintf("✅ %s. %s is correct!", optionLetter(option), q.Options[option]))
}

func explanationText(v service.QuizView) string {
	q := v.Question

	var sb strings.Builder
	sb.WriteString(questionHeader(v))
	sb.WriteString("\n\n")
	sb.WriteString(md("❌ Incorrect."))
	sb.WriteString("\n\n")
	sb.WriteString(bold("Correct answer: "))
	sb.WriteString(md(fmt.Sprintf("%s. %s", optionLetter(q.CorrectIndex), q.Options[q.CorrectIndex])))
	if q.FalseIndex != q.CorrectIndex {
		sb.WriteString("\n")
		sb.WriteString(bold("Common mistake: "))
		sb.WriteString(md(fmt.Sprintf("%s. %s", optionLetter(q.FalseIndex), q.Options[q.FalseIndex])))
	}
	if q.Explanation != "" {
		sb.WriteString("\n\n")
		sb.WriteString(italic(q.Explanation))
	}

	return sb.String()
}

func resultText(r entities.TestResult, passScore int) string {
	var sb strings.Builder

	if r.Passed {
		sb.WriteString(bold("🎉 Certification Passed!"))
	} else {
		sb.WriteString(bold("Retry Recommended"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Score: %d%% (%d of %d correct, %d on the first try)",
		r.Score, r.CorrectCount(), len(r.Details), r.FirstTryCount())))
	sb.WriteString("\n")

	if r.Passed {
		expiry := entities.CertificationExpiry(r.TakenAt)
		sb.WriteString(md(fmt.Sprintf("Your certification is valid until %s.", expiry.UTC().Format("2 Jan 2006"))))
	} else {
		sb.WriteString(md(fmt.Sprintf("The passing grade is %d%%. Send /quiz to try again.", passScore)))
	}

	return sb.String()
}

func statusLabel(s entities.ComplianceStatus) string {
	switch s {
	case entities.StatusCompliant:
		return "✅ Certified"
	case entities.StatusExpiringSoon:
		return "⏳ Expiring soon"
	default:
		return "❌ Not certified"
	}
}

func complianceLine(c entities.Compliance, now time.Time) string {
	switch {
	case c.ExpiresAt == nil:
		return "No passing result yet."
	case c.Status == entities.StatusNonCompliant:
		return fmt.Sprintf("Expired on %s.", c.ExpiresAt.UTC().Format("2 Jan 2006"))
	default:
		return fmt.Sprintf("Valid until %s (%d days left).", c.ExpiresAt.UTC().Format("2 Jan 2006"), c.DaysLeft(now))
	}
}

const maxHistoryLines = 10

func dashboardText(d *service.Dashboard, pending bool) string {
	var sb strings.Builder

	sb.WriteString(bold(d.User.Name))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("%s · %s", d.User.Email, d.User.GradeTaught)))
	sb.WriteString("\n\n")
	sb.WriteString(bold(statusLabel(d.Compliance.Status)))
	sb.WriteString("\n")
	sb.WriteString(md(complianceLine(d.Compliance, d.Now)))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Attempts: %d", d.Attempts)))

	if len(d.History) > 0 {
		sb.WriteString("\n")
		for i, r := range d.History {
			if i == maxHistoryLines {
				sb.WriteString("\n")
				sb.WriteString(md(fmt.Sprintf("… and %d older", len(d.History)-maxHistoryLines)))
				break
			}
			verdict := "PASSED"
			if !r.Passed {
				verdict = "RETRY"
			}
			sb.WriteString("\n")
			sb.WriteString(md(fmt.Sprintf("%s  %d%%  %s", r.TakenAt.UTC().Format("2 Jan 2006"), r.Score, verdict)))
		}
	}

	if pending {
		sb.WriteString("\n\n")
		sb.WriteString(md(msgResultPending))
	}

	return sb.String()
}

func profileText(u *entities.User) string {
	teach := "Yes"
	if !u.IntendToTeach {
		teach = "No"
	}

	var sb strings.Builder
	sb.WriteString(bold("Profile"))
	sb.WriteString("\n\n")
	sb.WriteString(md("Name: " + u.Name))
	sb.WriteString("\n")
	sb.WriteString(md("E-mail: " + u.Email))
	sb.WriteString("\n")
	sb.WriteString(md("Class: " + u.GradeTaught))
	sb.WriteString("\n")
	sb.WriteString(md("Teaching this cycle: " + teach))
	if u.IsAdmin {
		sb.WriteString("\n")
		sb.WriteString(italic("Administrator"))
	}
	return sb.String()
}

const maxRosterLines = 50

func rosterText(r *service.RosterReport) string {
	var sb strings.Builder

	sb.WriteString(bold("Staff compliance"))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Total: %d · Valid: %d · Outstanding: %d",
		r.Stats.Total, r.Stats.Valid, r.Stats.Outstanding)))
	sb.WriteString("\n")
	sb.WriteString(italic("Filter: " + string(r.Filter)))
	sb.WriteString("\n")

	if len(r.Entries) == 0 {
		sb.WriteString("\n")
		sb.WriteString(md("Nobody matches this filter."))
		return sb.String()
	}

	for i, e := range r.Entries {
		if i == maxRosterLines {
			sb.WriteString("\n")
			sb.WriteString(md(fmt.Sprintf("… and %d more", len(r.Entries)-maxRosterLines)))
			break
		}
		line := fmt.Sprintf("%s %s (%s) · %s", statusIcon(e.Compliance.Status), e.User.Name, e.User.GradeTaught,
			complianceLine(e.Compliance, r.Now))
		if !e.User.IntendToTeach {
			line += " · not teaching"
		}
		sb.WriteString("\n")
		sb.WriteString(md(line))
	}

	return sb.String()
}

func statusIcon(s entities.ComplianceStatus) string {
	switch s {
	case entities.StatusCompliant:
		return "✅"
	case entities.StatusExpiringSoon:
		return "⏳"
	default:
		return "❌"
	}
}

func reminderBatchText(b service.ReminderBatch) string {
	if len(b.Recipients) == 0 {
		return md("Nobody needs a reminder right now.")
	}

	text := md(fmt.Sprintf("Reminders sent: %d of %d.", b.Sent(), len(b.Recipients)))
	if len(b.Failed) > 0 {
		names := make([]string, 0, len(b.Failed))
		for _, u := range b.Failed {
			names = append(names, fmt.Sprintf("%s <%s>", u.Name, u.Email))
		}
		text += "\n\n" + md("Not delivered (no linked chat or send error):\n"+strings.Join(names, "\n"))
	}
	return text
}

func confirmDeleteText(u *entities.User) string {
	return md(fmt.Sprintf("Permanently remove %s <%s> and all of their test records? A final notification will be sent to them.",
		u.Name, u.Email))
}
