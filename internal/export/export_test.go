package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/betbot/opsboard/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportAt = time.Date(2024, 3, 15, 9, 5, 7, 0, time.UTC)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, []byte(BOM)), "missing BOM")
	records, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVRoundTrip(t *testing.T) {
	headers := []string{"name", "note", "amount"}
	rows := [][]string{
		{"a,b", "plain", "1.5"},
		{`say "hi"`, "line1\nline2", "-2"},
		{"", "中文", "0"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, headers, rows))

	assert.Contains(t, buf.String(), `"a,b"`)
	got := readCSV(t, buf.Bytes())
	require.Len(t, got, len(rows)+1)
	assert.Equal(t, headers, got[0])
	assert.Equal(t, rows, got[1:])
}

func TestCSVRejectsRaggedRows(t *testing.T) {
	err := WriteCSV(io.Discard, []string{"a", "b"}, [][]string{{"only one"}})
	assert.Error(t, err)
}

func TestFromMapsFollowsHeaderOrder(t *testing.T) {
	s := FromMaps("x", []string{"b", "a", "c"}, []map[string]string{{"a": "1", "b": "2"}})
	assert.Equal(t, [][]string{{"2", "1", ""}}, s.Rows)
}

func TestStamp(t *testing.T) {
	assert.Equal(t, "20240315_090507", Stamp(exportAt))
}

func fullReport(t *testing.T) (string, []Sheet) {
	t.Helper()
	g := fixture.New(fixture.Options{Seed: 5, Now: func() time.Time { return exportAt }, Location: time.UTC})
	name, sheets, err := PresetFullReport.Build(Data{
		Daily:  g.DailyReport(),
		Trades: g.Trades(),
		Fees:   g.Fees(5),
		At:     exportAt,
		Loc:    time.UTC,
	})
	require.NoError(t, err)
	return name, sheets
}

func TestZIPEntries(t *testing.T) {
	name, sheets := fullReport(t)
	assert.Equal(t, "full_report_20240315_090507", name)

	var buf bytes.Buffer
	require.NoError(t, WriteZIP(&buf, sheets, exportAt))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	wantNames := []string{"daily_summary.csv", "trade_history.csv", "fee_summary.csv"}
	for i, f := range zr.File {
		assert.Equal(t, wantNames[i], f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		records := readCSV(t, data)
		assert.Equal(t, sheets[i].Headers, records[0])
		assert.Len(t, records, len(sheets[i].Rows)+1)
	}
}

func TestZIPDuplicateSheetNames(t *testing.T) {
	sheets := []Sheet{{Name: "s", Headers: []string{"a"}}, {Name: "s", Headers: []string{"a"}}}
	var buf bytes.Buffer
	require.NoError(t, WriteZIP(&buf, sheets, exportAt))
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, "s.csv", zr.File[0].Name)
	assert.Equal(t, "s_2.csv", zr.File[1].Name)
}

func TestXLSXSheets(t *testing.T) {
	_, sheets := fullReport(t)
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sheets))

	fx, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer fx.Close()
	assert.Equal(t, []string{"daily_summary", "trade_history", "fee_summary"}, fx.GetSheetList())

	rows, err := fx.GetRows("trade_history")
	require.NoError(t, err)
	assert.Equal(t, TradeHeaders, rows[0])
	assert.Equal(t, "698759", rows[1][2])
}

func TestXLSXSheetNamesTruncateByRune(t *testing.T) {
	long := strings.Repeat("成交", 20) // 40 个字符
	sheets := []Sheet{
		{Name: long + "A", Headers: []string{"a"}},
		{Name: long + "B", Headers: []string{"a"}},
		{Name: "Fees", Headers: []string{"a"}},
		{Name: "fees", Headers: []string{"a"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sheets))

	fx, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer fx.Close()
	list := fx.GetSheetList()
	require.Len(t, list, 4)
	for _, name := range list {
		assert.True(t, utf8.ValidString(name), name)
		assert.LessOrEqual(t, utf8.RuneCountInString(name), 31, name)
	}
	assert.Equal(t, string([]rune(long)[:31]), list[0])
	assert.Equal(t, string([]rune(long)[:29])+"_2", list[1])
	assert.Equal(t, "Fees", list[2])
	assert.Equal(t, "fees_2", list[3])
}

func TestTradeHistoryName(t *testing.T) {
	from := exportAt.Add(-24 * time.Hour)
	name, sheets, err := PresetTradeHistory.Build(Data{From: from, To: exportAt, At: exportAt, Loc: time.UTC})
	require.NoError(t, err)
	assert.Equal(t, "trade_history_20240314_090507_20240315_090507", name)
	require.Len(t, sheets, 1)

	// 区间端点按导出时区展示
	shanghai := time.FixedZone("CST", 8*3600)
	name, _, err = PresetTradeHistory.Build(Data{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		At:   exportAt,
		Loc:  shanghai,
	})
	require.NoError(t, err)
	assert.Equal(t, "trade_history_20240301_080000_20240315_080000", name)

	_, _, err = Preset("nope").Build(Data{})
	assert.Error(t, err)
}

func TestWriteCSVNeedsOneSheet(t *testing.T) {
	_, sheets := fullReport(t)
	assert.Error(t, Write(io.Discard, FormatCSV, sheets, exportAt))
	assert.NoError(t, Write(io.Discard, FormatCSV, sheets[:1], exportAt))
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat(".XLSX")
	assert.True(t, ok)
	assert.Equal(t, FormatXLSX, f)
	_, ok = ParseFormat("pdf")
	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(FormatCSV.ContentType(), "text/csv"))
}
