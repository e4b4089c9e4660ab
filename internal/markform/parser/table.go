package parser

import (
	"fmt"
	"strings"

	"github.com/jlevy/markform/internal/markform/errno"
	"github.com/jlevy/markform/internal/markform/model"
)

// parseTableRows parses a GFM pipe table (header + `---` separator + rows)
// keyed by the field's declared column ids, honoring `\|` as an escaped
// literal pipe inside a cell (spec §8 boundary case: "table cells
// containing |").
func parseTableRows(text string, columnIDs []model.Id) ([]model.TableRow, error) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, nil
	}
	if len(lines) < 2 {
		return nil, &errno.ParseError{Msg: "table value must have a header and a separator row"}
	}

	header := splitTableRow(lines[0])
	if len(header) != len(columnIDs) {
		return nil, &errno.ParseError{Msg: fmt.Sprintf("table header has %d cells, expected %d declared columns", len(header), len(columnIDs))}
	}
	for i, h := range header {
		if model.Id(strings.TrimSpace(h)) != columnIDs[i] {
			return nil, &errno.ParseError{Msg: fmt.Sprintf("table header cell %d is %q, expected column id %q", i, h, columnIDs[i])}
		}
	}
	if !isSeparatorRow(lines[1]) {
		return nil, &errno.ParseError{Msg: "table value missing `---` separator row"}
	}

	var rows []model.TableRow
	for _, l := range lines[2:] {
		cells := splitTableRow(l)
		if len(cells) != len(columnIDs) {
			return nil, &errno.ParseError{Msg: fmt.Sprintf("table row has %d cells, expected %d", len(cells), len(columnIDs))}
		}
		row := model.TableRow{}
		for i, c := range cells {
			row[columnIDs[i]] = strings.TrimSpace(c)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isSeparatorRow(line string) bool {
	for _, cell := range splitTableRow(line) {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" || strings.Trim(trimmed, "-:") != "" {
			return false
		}
	}
	return true
}

// splitTableRow splits a pipe-delimited row, honoring `\|` as a literal
// pipe and stripping a single leading/trailing empty cell produced by
// convention-leading/trailing `|` delimiters.
func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cur.WriteByte('|')
			i++
		case line[i] == '|':
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(line[i])
		}
	}
	cells = append(cells, cur.String())

	if len(cells) > 0 && strings.TrimSpace(cells[0]) == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
