package tablet

import (
	"archive/zip"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyenthenguyen/docx"
	"kastelo.dev/sheetwork/lunar"
)

const templateXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>{牌位1}</w:t></w:r></w:p>
<w:p><w:r><w:t>陽上 {</w:t></w:r><w:r><w:t>姓名} 叩薦</w:t></w:r></w:p>
<w:p><w:r><w:t>{地址}</w:t></w:r></w:p>
<w:p/>
<w:p><w:r><w:t>{日期}</w:t></w:r></w:p>
<w:sectPr><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>
</w:body></w:document>`

func writeTemplate(t *testing.T, path string) {
	t.Helper()
	fd, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()

	zw := zip.NewWriter(fd)
	parts := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
		"word/document.xml":            templateXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeInput(t *testing.T, path string, data ...[]any) {
	t.Helper()
	f := workbook(t, registration(data...))
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func documentContent(t *testing.T, path string) string {
	t.Helper()
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	return r.Editable().GetContent()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T, data ...[]any) Options {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		Input:    filepath.Join(dir, "報名表.xlsx"),
		Template: filepath.Join(dir, "牌位.docx"),
		Date:     "2025-03-24",
		Logger:   quietLogger(),
	}
	writeInput(t, opts.Input, data...)
	writeTemplate(t, opts.Template)
	return opts
}

func TestGenerate(t *testing.T) {
	opts := setup(t,
		[]any{1, "王小明", "王大同\n李四\n張三", "台北市信義區松仁路一百號十樓之三"},
		[]any{2, "", "無名", ""},
		[]any{3, "陳大文", "陳公", ""},
	)

	var progress []Progress
	opts.Progress = func(p Progress) { progress = append(progress, p) }

	res, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}

	if res.OutputDir != filepath.Join(filepath.Dir(opts.Input), "Output") {
		t.Errorf("output dir %q", res.OutputDir)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, expected 2", len(res.Rows))
	}
	if f := res.Failed(); len(f) != 0 {
		t.Fatalf("unexpected failures %v", f)
	}

	content := documentContent(t, filepath.Join(res.OutputDir, "王小明.docx"))
	for _, want := range []string{"王小明", "乙巳年 二月 廿五日", "王大同 李四", "張三", "台北市信義區", "標楷體", `w:line="96"`, `w:top="432"`} {
		if !strings.Contains(content, want) {
			t.Errorf("document lacks %q", want)
		}
	}
	for _, token := range []string{"{姓名}", "{牌位1}", "{地址}", "{日期}", "{", "}"} {
		if strings.Contains(content, token) {
			t.Errorf("document still contains %q", token)
		}
	}

	if len(progress) != 2 {
		t.Fatalf("got %d progress reports", len(progress))
	}
	if progress[1].Fraction() != 1 || progress[0].Item != "王小明" {
		t.Errorf("unexpected progress %+v", progress)
	}
}

func TestGenerateTwiceOverwrites(t *testing.T) {
	opts := setup(t, []any{1, "王小明", "", ""}, []any{2, "陳大文", "", ""})
	opts.OutputDir = filepath.Join(t.TempDir(), "docs")

	for i := 0; i < 2; i++ {
		res, err := Generate(opts)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if len(res.Failed()) != 0 {
			t.Fatalf("run %d: failures %v", i, res.Failed())
		}
	}

	entries, err := os.ReadDir(opts.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("output dir holds %v, expected two documents", names)
	}
}

func TestGenerateDuplicateNames(t *testing.T) {
	opts := setup(t, []any{1, "王小明", "", "第一"}, []any{2, "王小明", "", "第二"})

	res, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 2 || res.Rows[0].Path != res.Rows[1].Path {
		t.Fatalf("unexpected rows %+v", res.Rows)
	}
	if content := documentContent(t, res.Rows[1].Path); !strings.Contains(content, "第二") {
		t.Error("later row did not win")
	}
}

func TestGenerateInvalidDate(t *testing.T) {
	opts := setup(t, []any{1, "王小明", "", ""})
	opts.Date = "2025-02-30"

	res, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Date != lunar.Placeholder {
		t.Errorf("date %q, expected placeholder", res.Date)
	}
	if content := documentContent(t, res.Rows[0].Path); !strings.Contains(content, lunar.Placeholder) {
		t.Error("document lacks placeholder date")
	}
}

func TestGenerateMissingColumns(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.xlsx")
	f := workbook(t, [][]any{{"姓名"}, {"王"}})
	if err := f.SaveAs(input); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err := Generate(Options{Input: input, Template: filepath.Join(dir, "none.docx"), Logger: quietLogger()})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.File != input {
		t.Errorf("error names %q", ve.File)
	}
	if _, err := os.Stat(filepath.Join(dir, "Output")); !os.IsNotExist(err) {
		t.Error("output directory created for a rejected input")
	}
}

func TestGenerateSetupFailures(t *testing.T) {
	opts := setup(t, []any{1, "王小明", "", ""})

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	bad := opts
	bad.OutputDir = filepath.Join(blocker, "sub")
	var pe *os.PathError
	if _, err := Generate(bad); !errors.As(err, &pe) {
		t.Errorf("unusable output dir: expected PathError, got %v", err)
	}

	bad = opts
	bad.Template = opts.Input
	if _, err := Generate(bad); err == nil {
		t.Error("spreadsheet accepted as template")
	}
}

func TestFileName(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"王小明", "王小明.docx"},
		{"a/b\\c", "a_b_c.docx"},
		{"what?", "what_.docx"},
		{" trailing. ", "trailing.docx"},
		{"..", "_.docx"},
	}

	for _, tc := range cases {
		if res := FileName(tc.in); res != tc.out {
			t.Errorf("FileName(%q) -> %q, expected %q", tc.in, res, tc.out)
		}
	}
}
