package serializer

import (
	"fmt"
	"strings"

	"github.com/jlevy/markform/internal/markform/model"
)

func writeSingleSelectChecklist(w *strings.Builder, opts []model.Option, val *model.FieldValue) {
	if writeSentinelIfNeeded(w, val) {
		return
	}
	for _, o := range opts {
		mark := " "
		if val.SingleSelect != nil && *val.SingleSelect == o.ID {
			mark = "x"
		}
		fmt.Fprintf(w, "- [%s] %s %s\n", mark, string(o.ID), o.Label)
	}
}

func writeMultiSelectChecklist(w *strings.Builder, opts []model.Option, val *model.FieldValue) {
	if writeSentinelIfNeeded(w, val) {
		return
	}
	selected := map[model.OptionId]bool{}
	for _, id := range val.MultiSelect {
		selected[id] = true
	}
	for _, o := range opts {
		mark := " "
		if selected[o.ID] {
			mark = "x"
		}
		fmt.Fprintf(w, "- [%s] %s %s\n", mark, string(o.ID), o.Label)
	}
}

func writeCheckboxesChecklist(w *strings.Builder, opts []model.Option, mode model.CheckboxMode, val *model.FieldValue) {
	if writeSentinelIfNeeded(w, val) {
		return
	}
	for _, o := range opts {
		state := val.Checkboxes[o.ID]
		if state == "" {
			state = model.DefaultState(mode)
		}
		fmt.Fprintf(w, "- [%s] %s %s\n", checkStateMarker(state), string(o.ID), o.Label)
	}
}

func checkStateMarker(s model.CheckState) string {
	switch s {
	case model.CheckDone, model.CheckYes:
		return "x"
	case model.CheckNA:
		return "-"
	case model.CheckNo:
		return "n"
	default:
		return " "
	}
}

// writeSentinelIfNeeded renders a %SKIP%/%ABORT% line in place of checklist
// markers and reports whether it did so.
func writeSentinelIfNeeded(w *strings.Builder, val *model.FieldValue) bool {
	if val.State != model.StateSkipped && val.State != model.StateAborted {
		return false
	}
	w.WriteString(*sentinelText(val))
	w.WriteString("\n")
	return true
}
