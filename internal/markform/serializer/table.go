package serializer

import (
	"fmt"
	"strings"

	"github.com/jlevy/markform/internal/markform/model"
)

func writeTableValue(w *strings.Builder, t *model.TableConstraints, val *model.FieldValue) {
	if writeSentinelIfNeeded(w, val) {
		return
	}
	if val.State != model.StateAnswered {
		return
	}

	w.WriteString("| ")
	w.WriteString(strings.Join(idStrings(t.ColumnIDs), " | "))
	w.WriteString(" |\n")

	seps := make([]string, len(t.ColumnIDs))
	for i := range seps {
		seps[i] = "---"
	}
	w.WriteString("| ")
	w.WriteString(strings.Join(seps, " | "))
	w.WriteString(" |\n")

	for _, row := range val.Table {
		cells := make([]string, len(t.ColumnIDs))
		for i, id := range t.ColumnIDs {
			cells[i] = escapeTableCell(row[id])
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
}

func idStrings(ids []model.Id) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func escapeTableCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
