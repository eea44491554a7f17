package table_test

import (
	"testing"

	"github.com/ember-lang/ember/internal/table"
	"github.com/ember-lang/ember/internal/value"
)

func TestSetGetRoundTrip(t *testing.T) {
	tbl := table.New()
	tbl.Set(value.Number(1), value.Bool(true))
	got := tbl.Get(value.Number(1))
	if !got.IsBool() || !got.AsBool() {
		t.Fatalf("Get returned %v, want true", got)
	}
}

func TestGetMissingKeyIsNil(t *testing.T) {
	tbl := table.New()
	if got := tbl.Get(value.Number(42)); !got.IsNil() {
		t.Fatalf("Get on missing key returned %v, want nil", got)
	}
}

func TestSetNilDeletes(t *testing.T) {
	tbl := table.New()
	tbl.Set(value.Number(1), value.Number(99))
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}
	tbl.Set(value.Number(1), value.Nil())
	if tbl.Len() != 0 {
		t.Fatalf("Len after deleting = %d, want 0", tbl.Len())
	}
	if got := tbl.Get(value.Number(1)); !got.IsNil() {
		t.Fatalf("Get after delete = %v, want nil", got)
	}
}

func TestTombstoneReuseKeepsOtherKeysFindable(t *testing.T) {
	tbl := table.New()
	tbl.Set(value.Number(1), value.Number(10))
	tbl.Set(value.Number(2), value.Number(20))
	tbl.Set(value.Number(1), value.Nil()) // tombstone slot 1's bucket
	if got := tbl.Get(value.Number(2)); got.AsNumber() != 20 {
		t.Fatalf("Get(2) after deleting 1 = %v, want 20", got)
	}
}

func TestGrowPreservesAllEntries(t *testing.T) {
	tbl := table.New()
	const n = 200
	for i := 0; i < n; i++ {
		tbl.Set(value.Number(float64(i)), value.Number(float64(i*2)))
	}
	if tbl.Len() != n {
		t.Fatalf("Len = %d, want %d", tbl.Len(), n)
	}
	for i := 0; i < n; i++ {
		got := tbl.Get(value.Number(float64(i)))
		if got.AsNumber() != float64(i*2) {
			t.Fatalf("Get(%d) = %v, want %d", i, got, i*2)
		}
	}
}

func TestEachVisitsEveryLiveEntry(t *testing.T) {
	tbl := table.New()
	want := map[float64]float64{1: 10, 2: 20, 3: 30}
	for k, v := range want {
		tbl.Set(value.Number(k), value.Number(v))
	}
	got := map[float64]float64{}
	tbl.Each(func(k, v value.Value) {
		got[k.AsNumber()] = v.AsNumber()
	})
	if len(got) != len(want) {
		t.Fatalf("Each visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Each[%v] = %v, want %v", k, got[k], v)
		}
	}
}
