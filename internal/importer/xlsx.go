package importer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// convertXlsx renders every sheet as a heading followed by a pipe table.
// The first row of each sheet is treated as the header row.
func convertXlsx(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: open xlsx: %v", ErrCorruptedInput, err)
	}
	defer func() { _ = f.Close() }()

	var blocks []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("%w: read sheet %q: %v", ErrCorruptedInput, sheet, err)
		}
		if table := sheetTable(rows); table != "" {
			blocks = append(blocks, "## "+sheet+"\n\n"+table)
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}

func sheetTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}
	var lines []string
	for i, row := range rows {
		cells := make([]string, width)
		for j := range cells {
			if j < len(row) {
				cells[j] = tableCell(row[j])
			}
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			seps := make([]string, width)
			for j := range seps {
				seps[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n")
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
