package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"registro/internal/core"
)

func sampleInput(t *testing.T) Input {
	t.Helper()
	l := core.NewLedger()
	drafts := []core.Draft{
		{Date: "2024-05-01", Event: "Culto dominical", Kind: "income", Category: "Diezmos", Amount: "150.50", Description: "Servicio de la mañana"},
		{Date: "2024-05-03", Event: "Pago de luz", Kind: "expense", Category: "Servicios", Amount: "45.25"},
	}
	for _, dr := range drafts {
		if _, err := l.Add(dr); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	entries := l.Entries()
	return Input{
		Organization: "Misión Pentecostal de Jesucristo",
		Entries:      entries,
		Totals:       core.ComputeTotals(entries),
		GeneratedAt:  time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Misión Pentecostal", "Misi_n_Pentecostal"},
		{"  padded  ", "padded"},
		{"a  b\tc", "a_b_c"},
		{"ok-name.v2", "ok-name.v2"},
		{"", ""},
		{"slash/and:colon", "slash_and_colon"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	got := Filename("Iglesia Central", "pdf", at)
	if got != "Iglesia_Central_movements_2024-05-10.pdf" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleInput(t)); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not look like a pdf: %q", buf.Bytes()[:8])
	}
	if buf.Len() < 500 {
		t.Fatalf("pdf suspiciously small: %d bytes", buf.Len())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	in := sampleInput(t)
	if err := WriteXLSX(&buf, in); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(sheetName, "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "Culto dominical" {
		t.Fatalf("B2 = %q, want event name", got)
	}
	kind, _ := f.GetCellValue(sheetName, "C3")
	if kind != "Egreso" {
		t.Fatalf("C3 = %q, want Egreso", kind)
	}
	amount, _ := f.GetCellValue(sheetName, "E2")
	if amount != "150.5" {
		t.Fatalf("E2 = %q, want numeric 150.5", amount)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleInput(t)); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\xEF\xBB\xBF") {
		t.Fatal("missing utf-8 bom")
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\xEF\xBB\xBF")), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "150.50") || !strings.Contains(lines[1], "Ingreso") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "Egreso") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestWritePDFEmptyLedger(t *testing.T) {
	var buf bytes.Buffer
	in := Input{Organization: "org", GeneratedAt: time.Now()}
	if err := WritePDF(&buf, in); err != nil {
		t.Fatalf("empty input should still render: %v", err)
	}
}
