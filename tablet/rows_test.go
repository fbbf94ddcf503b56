package tablet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
	"kastelo.dev/sheetwork/config"
)

// workbook builds a single-sheet workbook from rows starting at A1.
func workbook(t *testing.T, rows [][]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		row := row
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func workbookBytes(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := workbook(t, rows)
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

// registration returns a sheet laid out like the sign-up form: four title
// rows, headers on row five, then data.
func registration(data ...[]any) [][]any {
	rows := [][]any{
		{"報名表"},
		{},
		{"日期", "2025"},
		{},
		{"編號", "姓名", "牌位１", "您的住址"},
	}
	return append(rows, data...)
}

func TestReadRows(t *testing.T) {
	buf := workbookBytes(t, registration(
		[]any{1, "王小明", "王大同\n李四\n\n", "台北市信義區"},
		[]any{2, "", "無名", "某處"},
		[]any{3, "   ", "", ""},
		[]any{4, " 陳大文 ", "", ""},
	))

	rows, err := ReadRows(buf, config.Default().Tablet.Columns, 5)
	if err != nil {
		t.Fatal(err)
	}

	want := []SourceRow{
		{Line: 6, Name: "王小明", Ancestors: []string{"王大同", "李四"}, Address: "台北市信義區"},
		{Line: 9, Name: "陳大文"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRowsMissingColumns(t *testing.T) {
	cases := []struct {
		name      string
		rows      [][]any
		headerRow int
		missing   []string
	}{
		{
			name:      "address",
			rows:      [][]any{{"姓名", "牌位1"}, {"王", "李"}},
			headerRow: 1,
			missing:   []string{"您的住址"},
		},
		{
			name:      "wrong header row",
			rows:      registration([]any{1, "王", "", ""}),
			headerRow: 1,
			missing:   []string{"姓名", "牌位1", "您的住址"},
		},
		{
			name:      "beyond sheet",
			rows:      [][]any{{"姓名"}},
			headerRow: 5,
			missing:   []string{"姓名", "牌位1", "您的住址"},
		},
	}

	for _, tc := range cases {
		_, err := ReadRows(workbookBytes(t, tc.rows), config.Default().Tablet.Columns, tc.headerRow)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
			continue
		}
		if diff := cmp.Diff(tc.missing, ve.Missing); diff != "" {
			t.Errorf("%s: missing mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{" 姓名 ", "姓名"},
		{"牌位１", "牌位1"},
		{"Ｒｏｏｍ", "Room"},
	}

	for _, tc := range cases {
		if res := normalizeHeader(tc.in); res != tc.out {
			t.Errorf("normalizeHeader(%q) -> %q, expected %q", tc.in, res, tc.out)
		}
	}
}

func TestReadRowsGarbage(t *testing.T) {
	if _, err := ReadRows(bytes.NewBufferString("not a workbook"), config.Default().Tablet.Columns, 5); err == nil {
		t.Error("unexpected success")
	}
}

func TestReadRowsHeaderRowRange(t *testing.T) {
	_, err := ReadRows(workbookBytes(t, registration()), config.Default().Tablet.Columns, 0)
	if err == nil {
		t.Fatal("unexpected success")
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Errorf("expected a plain error, got %v", err)
	}
}
