package google

import "testing"

func TestParseRows(t *testing.T) {
	rows := [][]any{
		{"Diezmos", "Servicios"},
		{"Ofrendas", ""},
		{"", "Mantenimiento"},
		{"  Donaciones  ", "  Ayuda social "},
		{}, // completely empty row
		{"Diezmos"}, // duplicate stays, short row ok
	}
	cat := ParseRows(rows)

	wantIncomes := []string{"Diezmos", "Ofrendas", "Donaciones", "Diezmos"}
	wantExpenses := []string{"Servicios", "Mantenimiento", "Ayuda social"}

	if len(cat.Incomes) != len(wantIncomes) {
		t.Fatalf("incomes: expected %v, got %v", wantIncomes, cat.Incomes)
	}
	for i, w := range wantIncomes {
		if cat.Incomes[i] != w {
			t.Fatalf("incomes[%d]: expected %q, got %q", i, w, cat.Incomes[i])
		}
	}
	if len(cat.Expenses) != len(wantExpenses) {
		t.Fatalf("expenses: expected %v, got %v", wantExpenses, cat.Expenses)
	}
	for i, w := range wantExpenses {
		if cat.Expenses[i] != w {
			t.Fatalf("expenses[%d]: expected %q, got %q", i, w, cat.Expenses[i])
		}
	}
}

func TestParseRowsEmpty(t *testing.T) {
	cat := ParseRows(nil)
	if len(cat.Incomes) != 0 || len(cat.Expenses) != 0 {
		t.Fatalf("expected empty catalog, got %+v", cat)
	}
}
