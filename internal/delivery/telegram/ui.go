package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

// buildQuizAnswerKeyboard builds one button per option plus a cancel button.
func buildQuizAnswerKeyboard(v service.QuizView) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for i := range v.Question.Options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(optionLetter(i), buildAnswerCallback(v.Position, i)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel quiz", actionCancel),
		),
	)
}

func buildContinueKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Continue ▶️", actionContinue),
		),
	)
}

// buildQuizResultKeyboard builds keyboard for quiz results screen.
func buildQuizResultKeyboard(passed bool) tgbotapi.InlineKeyboardMarkup {
	first := tgbotapi.NewInlineKeyboardButtonData("📋 My status", actionStatus)
	if !passed {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Try again", actionStart),
			),
			tgbotapi.NewInlineKeyboardRow(first),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(first))
}

// buildGradeKeyboard lists the grade catalog, two per row.
func buildGradeKeyboard(callback func(idx int) string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(entities.Grades); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(entities.Grades[i], callback(i)),
		}
		if i+1 < len(entities.Grades) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(entities.Grades[i+1], callback(i+1)))
		}
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func buildProfileKeyboard(u *entities.User) tgbotapi.InlineKeyboardMarkup {
	teach := "🙅 Not teaching this cycle"
	if !u.IntendToTeach {
		teach = "🙋 Teaching this cycle"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏫 Change class", buildProfileCallback(profileGrades)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(teach, buildProfileCallback(profileTeach)),
		),
	)
}

func buildStatusKeyboard(c entities.Compliance) tgbotapi.InlineKeyboardMarkup {
	label := "📝 Take the test"
	if c.Status == entities.StatusCompliant {
		label = "📝 Take the test again"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, actionStart),
		),
	)
}

func buildRosterKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("All", buildRosterCallback(string(entities.FilterAll))),
			tgbotapi.NewInlineKeyboardButtonData("Outstanding", buildRosterCallback(string(entities.FilterOutstanding))),
			tgbotapi.NewInlineKeyboardButtonData("Passed", buildRosterCallback(string(entities.FilterPassed))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📣 Remind outstanding staff", actionRemind),
		),
	)
}

func buildDeleteKeyboard(userID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", buildDeleteCallback(deleteConfirm, userID)),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", buildDeleteCallback(deleteAbort, userID)),
		),
	)
}
