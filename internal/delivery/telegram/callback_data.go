package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionAnswer   = "qa"  // qa:<position>:<option>
	actionContinue = "qn"  // qn
	actionCancel   = "qc"  // qc
	actionStart    = "qs"  // qs
	actionRegister = "reg" // reg:<grade index>
	actionProfile  = "pf"  // pf:<sub>[:<grade index>]
	actionRoster   = "ro"  // ro:<filter>
	actionRemind   = "rm"  // rm
	actionDelete   = "del" // del:<confirm|abort>:<user id>
	actionStatus   = "st"  // st
)

// Profile sub-actions.
const (
	profileGrades = "grades"
	profileGrade  = "grade"
	profileTeach  = "teach"
)

// Delete sub-actions.
const (
	deleteConfirm = "confirm"
	deleteAbort   = "abort"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// intParam returns the i-th parameter as an int.
func (cd callbackData) intParam(i int) (int, bool) {
	if i >= len(cd.Params) {
		return 0, false
	}
	n, err := strconv.Atoi(cd.Params[i])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (cd callbackData) param(i int) string {
	if i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

func buildAnswerCallback(position, option int) string {
	return callbackData{
		Action: actionAnswer,
		Params: []string{strconv.Itoa(position), strconv.Itoa(option)},
	}.encode()
}

func buildRegisterCallback(gradeIdx int) string {
	return callbackData{Action: actionRegister, Params: []string{strconv.Itoa(gradeIdx)}}.encode()
}

func buildProfileCallback(sub string, params ...string) string {
	return callbackData{Action: actionProfile, Params: append([]string{sub}, params...)}.encode()
}

func buildRosterCallback(filter string) string {
	return callbackData{Action: actionRoster, Params: []string{filter}}.encode()
}

func buildDeleteCallback(sub, userID string) string {
	return callbackData{Action: actionDelete, Params: []string{sub, userID}}.encode()
}
