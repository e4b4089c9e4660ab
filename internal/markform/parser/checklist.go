package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jlevy/markform/internal/markform/errno"
	"github.com/jlevy/markform/internal/markform/model"
)

// reChecklistLine matches a GFM-style task-list line carrying an explicit
// option id: "- [x] option_id Human label" (the label is ignored on parse;
// it exists for author readability and is re-derived from the option
// declaration on serialize).
var reChecklistLine = regexp.MustCompile(`^\s*[-*]\s*\[(.)\]\s*(\S+)`)

// checklistMark is the marker vocabulary this repository's convention uses
// inside a field body for single_select/multi_select/checkboxes values
// (spec §4.2 "inline marker conventions (e.g. [x]/[ ])"; the exact marker
// alphabet below is this implementation's concrete resolution of that
// open-ended contract, recorded in DESIGN.md).
type checklistMark byte

const (
	markUnset   checklistMark = ' ' // todo / unfilled / not selected
	markDone    checklistMark = 'x' // done / yes / selected
	markNA      checklistMark = '-' // na (checkboxes mode all/any only)
	markNo      checklistMark = 'n' // no (checkboxes mode explicit only)
)

type checklistLine struct {
	mark     checklistMark
	optionID model.OptionId
}

func parseChecklistLines(text string) ([]checklistLine, error) {
	var out []checklistLine
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := reChecklistLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		mark := checklistMark(strings.ToLower(m[1])[0])
		out = append(out, checklistLine{mark: mark, optionID: model.OptionId(m[2])})
	}
	return out, nil
}

func buildSingleSelectValue(id model.Id, lines []checklistLine) (*model.FieldValue, error) {
	v := model.NewUnanswered(id, model.KindSingleSelect)
	var chosen *model.OptionId
	for _, l := range lines {
		if l.mark == markDone {
			if chosen != nil {
				return nil, &errno.ParseError{Msg: fmt.Sprintf("single_select field %q has more than one option marked selected", id)}
			}
			opt := l.optionID
			chosen = &opt
		}
	}
	if chosen != nil {
		v.State = model.StateAnswered
		v.SingleSelect = chosen
	}
	return v, nil
}

func buildMultiSelectValue(id model.Id, lines []checklistLine) *model.FieldValue {
	v := model.NewUnanswered(id, model.KindMultiSelect)
	var selected []model.OptionId
	for _, l := range lines {
		if l.mark == markDone {
			selected = append(selected, l.optionID)
		}
	}
	if len(selected) > 0 {
		v.State = model.StateAnswered
		v.MultiSelect = selected
	}
	return v
}

func buildCheckboxesValue(id model.Id, mode model.CheckboxMode, lines []checklistLine) (*model.FieldValue, error) {
	v := model.NewUnanswered(id, model.KindCheckboxes)
	states := map[model.OptionId]model.CheckState{}
	any := false
	for _, l := range lines {
		var state model.CheckState
		switch l.mark {
		case markUnset:
			state = model.DefaultState(mode)
		case markDone:
			state = model.DoneState(mode)
		case markNA:
			if mode == model.ModeExplicit {
				return nil, &errno.ParseError{Msg: fmt.Sprintf("checkboxes field %q: \"na\" marker is not valid in explicit mode", id)}
			}
			state = model.CheckNA
		case markNo:
			if mode != model.ModeExplicit {
				return nil, &errno.ParseError{Msg: fmt.Sprintf("checkboxes field %q: \"no\" marker is only valid in explicit mode", id)}
			}
			state = model.CheckNo
		default:
			return nil, &errno.ParseError{Msg: fmt.Sprintf("checkboxes field %q: unrecognized marker %q", id, string(l.mark))}
		}
		states[l.optionID] = state
		any = true
	}
	if any {
		v.State = model.StateAnswered
		v.Checkboxes = states
	}
	return v, nil
}
