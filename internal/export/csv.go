// Package export 把表格数据序列化为 CSV / ZIP / XLSX。
package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"time"

	"github.com/pkg/errors"
)

// BOM UTF-8 字节序标记，保证表格软件按 UTF-8 打开
const BOM = "\ufeff"

// Sheet 一张表：表头 + 行（字段顺序与表头一致）
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// FromMaps 按表头顺序从 map 行构造 Sheet，缺失字段为空串
func FromMaps(name string, headers []string, rows []map[string]string) Sheet {
	s := Sheet{Name: name, Headers: headers, Rows: make([][]string, 0, len(rows))}
	for _, m := range rows {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = m[h]
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// WriteCSV 写出 BOM + 表头 + 数据行。
// 含逗号、双引号或换行的字段按 RFC 4180 加引号转义。
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return errors.Wrap(err, "write bom")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, row := range rows {
		if len(row) != len(headers) {
			return errors.Errorf("row %d has %d fields, want %d", i, len(row), len(headers))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// CSVBytes 单表 CSV
func CSVBytes(s Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, s.Headers, s.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Stamp 文件名时间戳：YYYYMMDD_HHMMSS
func Stamp(t time.Time) string {
	return t.Format("20060102_150405")
}
