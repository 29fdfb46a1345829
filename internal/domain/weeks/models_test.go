package weeks

import "testing"

func TestLabelAndFind(t *testing.T) {
	list := []Week{{ID: 4, Season: 2024, WeekNumber: 2}, {ID: 3, Season: 2024, WeekNumber: 1}}

	w, ok := Find(list, 3)
	if !ok || w.Label() != "Week 1, 2024" {
		t.Fatalf("unexpected week %+v (ok=%v)", w, ok)
	}
	if _, ok := Find(list, 99); ok {
		t.Fatalf("expected missing week")
	}
}
