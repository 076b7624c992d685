package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

var ErrNoRecipient = errors.New("user has no linked telegram chat")

const maxConcurrentSends = 10

// Notifier delivers user event messages over Telegram. Test results and
// deletion notices are copied to the administrator chats.
type Notifier struct {
	bot          Sender
	adminChats   []int64
	organization string
	questions    QuestionCatalog
	passScore    int
	clock        func() time.Time
	logger       *zap.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(
	bot Sender,
	adminChats []int64,
	organization string,
	questions QuestionCatalog,
	passScore int,
	clock func() time.Time,
	logger *zap.Logger,
) *Notifier {
	if clock == nil {
		clock = time.Now
	}
	return &Notifier{
		bot:          bot,
		adminChats:   adminChats,
		organization: organization,
		questions:    questions,
		passScore:    passScore,
		clock:        clock,
		logger:       logger,
	}
}

// NotifyTestCompleted sends the result to the user and the administrators.
// It fails only when nobody received the message.
func (n *Notifier) NotifyTestCompleted(_ context.Context, user *entities.User, result entities.TestResult) error {
	text := TestCompletedText(n.organization, user, result, n.questions, n.passScore)
	return n.deliver(user, text, "test_completed")
}

// NotifyAccountDeleted sends the formal deletion notice.
func (n *Notifier) NotifyAccountDeleted(_ context.Context, user *entities.User) error {
	return n.deliver(user, AccountDeletedText(n.organization, user), "account_deleted")
}

// NotifyComplianceReminder sends one reminder per user. Users without a
// linked chat and failed sends are reported in a *service.BatchError.
func (n *Notifier) NotifyComplianceReminder(ctx context.Context, users []*entities.User) error {
	var (
		mu       sync.Mutex
		batchErr service.BatchError
	)
	fail := func(id string, err error) {
		mu.Lock()
		batchErr.Add(id, err)
		mu.Unlock()
	}

	now := n.clock()

	var g errgroup.Group
	g.SetLimit(maxConcurrentSends)

	for _, u := range users {
		if !u.HasChat() {
			fail(u.ID, ErrNoRecipient)
			continue
		}
		if err := ctx.Err(); err != nil {
			fail(u.ID, err)
			continue
		}

		g.Go(func() error {
			text := ReminderText(n.organization, u, u.Compliance(now), now)
			if _, err := n.bot.Send(newMessage(u.TelegramChatID, text)); err != nil {
				n.logger.Warn("failed to send reminder",
					zap.String("user_id", u.ID),
					zap.Int64("chat_id", u.TelegramChatID),
					zap.Error(err),
				)
				fail(u.ID, err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return batchErr.ErrOrNil()
}

// deliver sends text to the user's chat and copies it to the admin chats.
func (n *Notifier) deliver(user *entities.User, text, kind string) error {
	var (
		delivered int
		errs      []error
	)

	chats := make([]int64, 0, len(n.adminChats)+1)
	if user.HasChat() {
		chats = append(chats, user.TelegramChatID)
	} else {
		errs = append(errs, ErrNoRecipient)
	}
	for _, id := range n.adminChats {
		if id != user.TelegramChatID {
			chats = append(chats, id)
		}
	}

	for _, chatID := range chats {
		if _, err := n.bot.Send(newMessage(chatID, text)); err != nil {
			n.logger.Warn("failed to deliver notification",
				zap.String("kind", kind),
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return errors.Join(errs...)
	}
	return nil
}

func rule() string {
	return md(strings.Repeat("-", 30))
}

// TestCompletedText renders the result notice with the per-question breakdown.
// Questions missing from the catalog are listed without their text.
func TestCompletedText(org string, user *entities.User, r entities.TestResult, questions QuestionCatalog, passScore int) string {
	status := fmt.Sprintf("PASSED (PASSING GRADE IS %d%%)", passScore)
	if !r.Passed {
		status = "FAILED - RETRY REQUIRED"
	}

	var sb strings.Builder
	sb.WriteString(bold(strings.ToUpper(org) + " - CHILD PROTECTION TEST RESULT"))
	sb.WriteString("\n")
	sb.WriteString(rule())
	sb.WriteString("\n")
	sb.WriteString(md("Staff Member: " + user.Name))
	sb.WriteString("\n")
	sb.WriteString(md("Email: " + user.Email))
	sb.WriteString("\n")
	sb.WriteString(md("Date: " + formatDate(r.TakenAt)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Score: %d%%", r.Score)))
	sb.WriteString("\n")
	sb.WriteString(md("Status: " + status))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Test Format: %d random questions from a pool of %d unique items", len(r.Details), questions.Len())))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Total attempts for this user: %d", len(user.Results))))
	sb.WriteString("\n")
	sb.WriteString(rule())
	sb.WriteString("\n")
	sb.WriteString(md("Detailed breakdown:"))

	for i, a := range r.Details {
		verdict := "Correct"
		if !a.IsCorrect {
			verdict = "Incorrect"
		}
		line := fmt.Sprintf("Q%d: %s (%d attempt(s))", i+1, verdict, a.Attempts)
		if q, err := questions.GetByID(a.QuestionID); err == nil {
			line += " - " + q.Text
		}
		sb.WriteString("\n")
		sb.WriteString(md(line))
	}

	return sb.String()
}

// AccountDeletedText renders the formal notice sent before an account is removed.
func AccountDeletedText(org string, user *entities.User) string {
	var sb strings.Builder
	sb.WriteString(bold(strings.ToUpper(org) + " - ACCOUNT DELETION NOTICE"))
	sb.WriteString("\n")
	sb.WriteString(rule())
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Dear %s,", user.Name)))
	sb.WriteString("\n\n")
	sb.WriteString(md("This is a formal notification that your access to the Child Protection Portal has been removed by the administration."))
	sb.WriteString("\n\n")
	sb.WriteString(md("As a result, your training records associated with this account have been purged. " +
		"If you believe this is an error or if you intend to continue teaching, " +
		"please contact the Sunday School Superintendent or Church Elders immediately."))
	sb.WriteString("\n\n")
	sb.WriteString(md("Regards,"))
	sb.WriteString("\n")
	sb.WriteString(md(org + " Administration"))
	return sb.String()
}

// ReminderText renders the compliance reminder for one user.
func ReminderText(org string, user *entities.User, c entities.Compliance, now time.Time) string {
	subject := "Action Required: Child Protection Certification Expired"
	if c.Status == entities.StatusExpiringSoon {
		subject = "Action Required: Child Protection Certification Expiring Soon"
	}

	var sb strings.Builder
	sb.WriteString(bold(subject))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Dear %s,", user.Name)))
	sb.WriteString("\n\n")
	sb.WriteString(md(complianceLine(c, now)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Everyone serving in the %s children's ministry must hold a valid certification. Send /quiz to take the test.", org)))
	return sb.String()
}
