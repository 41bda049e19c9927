package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook 导出成员活跃工作簿，每个月一个 sheet（键形如 "2025-06"）。
func WriteWorkbook(path string, months map[string][]MemberActivity) error {
	if len(months) == 0 {
		return fmt.Errorf("no month data to export")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	wb := excelize.NewFile()
	defer wb.Close()

	for i, month := range keys {
		sheet := month
		if i == 0 {
			// 复用默认 Sheet1
			if err := wb.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet failed: %w", err)
			}
		} else {
			if _, err := wb.NewSheet(sheet); err != nil {
				return fmt.Errorf("new sheet %s failed: %w", sheet, err)
			}
		}

		headers := []string{"成员", "发言数", "活跃天数", "首次发言", "最近发言"}
		for col, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := wb.SetCellValue(sheet, cell, h); err != nil {
				return fmt.Errorf("write header failed: %w", err)
			}
		}

		for row, m := range months[month] {
			values := []interface{}{
				m.Name, m.Messages, m.ActiveDays,
				m.FirstSeen.Format("2006-01-02 15:04"),
				m.LastSeen.Format("2006-01-02 15:04"),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				if err := wb.SetCellValue(sheet, cell, v); err != nil {
					return fmt.Errorf("write row failed: %w", err)
				}
			}
		}

		_ = wb.SetColWidth(sheet, "A", "A", 24)
		_ = wb.SetColWidth(sheet, "D", "E", 18)
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook failed: %w", err)
	}
	return nil
}
