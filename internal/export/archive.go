package export

import (
	"archive/zip"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Format 导出格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatZIP  Format = "zip"
	FormatXLSX Format = "xlsx"
)

// ParseFormat 解析文件扩展名
func ParseFormat(ext string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimPrefix(ext, "."))) {
	case FormatCSV:
		return FormatCSV, true
	case FormatZIP:
		return FormatZIP, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// ContentType 下载响应的 MIME 类型
func (f Format) ContentType() string {
	switch f {
	case FormatZIP:
		return "application/zip"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// WriteZIP 多表打包：每张表一个 <name>.csv 条目
func WriteZIP(w io.Writer, sheets []Sheet, modified time.Time) error {
	zw := zip.NewWriter(w)
	seen := map[string]bool{}
	for _, s := range sheets {
		name := entryName(s.Name, seen)
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return errors.Wrapf(err, "create entry %s", name)
		}
		if err := WriteCSV(fw, s.Headers, s.Rows); err != nil {
			return errors.Wrapf(err, "write entry %s", name)
		}
	}
	return errors.Wrap(zw.Close(), "close zip")
}

func entryName(sheet string, seen map[string]bool) string {
	base := strings.TrimSpace(sheet)
	if base == "" {
		base = "sheet"
	}
	name := base + ".csv"
	for i := 2; seen[name]; i++ {
		name = base + "_" + strconv.Itoa(i) + ".csv"
	}
	seen[name] = true
	return name
}

// WriteXLSX 多表写入一个工作簿，表头加粗
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	fx := excelize.NewFile()
	defer fx.Close()

	headStyle, err := fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.Wrap(err, "new header style")
	}

	seen := map[string]bool{}
	for i, s := range sheets {
		name := sheetName(s.Name, i, seen)
		if i == 0 {
			if err := fx.SetSheetName(fx.GetSheetName(0), name); err != nil {
				return errors.Wrapf(err, "rename sheet %s", name)
			}
		} else if _, err := fx.NewSheet(name); err != nil {
			return errors.Wrapf(err, "new sheet %s", name)
		}
		for col, h := range s.Headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := fx.SetCellValue(name, cell, h); err != nil {
				return errors.Wrapf(err, "%s header", name)
			}
		}
		if len(s.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(s.Headers), 1)
			if err := fx.SetCellStyle(name, "A1", last, headStyle); err != nil {
				return errors.Wrapf(err, "%s header style", name)
			}
		}
		for r, row := range s.Rows {
			for col, v := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := fx.SetCellValue(name, cell, v); err != nil {
					return errors.Wrapf(err, "%s cell %s", name, cell)
				}
			}
		}
	}
	_, err = fx.WriteTo(w)
	return errors.Wrap(err, "write xlsx")
}

const maxSheetName = 31

// sheetName Excel 工作表名最长 31 个字符（按字符截断），同名（不区分大小写）时追加 _2、_3
func sheetName(name string, i int, seen map[string]bool) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = "Sheet" + strconv.Itoa(i+1)
	}
	name = truncateRunes(base, maxSheetName)
	for n := 2; seen[strings.ToLower(name)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	seen[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
