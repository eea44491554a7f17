package value_test

import (
	"testing"

	"github.com/ember-lang/ember/internal/value"
)

type fakeObj struct {
	value.Header
}

func newFakeObj() *fakeObj {
	f := &fakeObj{}
	f.Header = value.NewHeader(value.KindTable)
	return f
}

func TestEqualNumbersAndBools(t *testing.T) {
	if !value.Equal(value.Number(3), value.Number(3)) {
		t.Fatal("equal numbers compared unequal")
	}
	if value.Equal(value.Number(3), value.Number(4)) {
		t.Fatal("distinct numbers compared equal")
	}
	if !value.Equal(value.Bool(true), value.Bool(true)) {
		t.Fatal("equal bools compared unequal")
	}
	if value.Equal(value.Bool(true), value.Bool(false)) {
		t.Fatal("distinct bools compared equal")
	}
	if !value.Equal(value.Nil(), value.Nil()) {
		t.Fatal("nil did not compare equal to itself")
	}
}

func TestEqualUndefinedNeverEqual(t *testing.T) {
	if value.Equal(value.Undefined(), value.Undefined()) {
		t.Fatal("undefined compared equal to itself")
	}
	if value.Equal(value.Undefined(), value.Nil()) {
		t.Fatal("undefined compared equal to nil")
	}
}

func TestEqualObjectsByIdentity(t *testing.T) {
	a := newFakeObj()
	b := newFakeObj()
	va, vb := value.FromObject(a), value.FromObject(b)
	if value.Equal(va, vb) {
		t.Fatal("distinct objects compared equal")
	}
	if !value.Equal(va, va) {
		t.Fatal("an object did not compare equal to itself")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    value.Value
		want bool
	}{
		{value.Nil(), false},
		{value.Bool(false), false},
		{value.Bool(true), true},
		{value.Number(0), true},
		{value.FromObject(newFakeObj()), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestHashKeyDistinguishesTypes(t *testing.T) {
	if value.Number(0).HashKey() == value.Bool(false).HashKey() {
		t.Fatal("number 0 and bool false hashed identically")
	}
	if value.Bool(true).HashKey() != value.Bool(true).HashKey() {
		t.Fatal("HashKey is not deterministic for bool")
	}
}

func TestIsObjectKind(t *testing.T) {
	v := value.FromObject(newFakeObj())
	if !v.IsObjectKind(value.KindTable) {
		t.Fatal("IsObjectKind missed a matching kind")
	}
	if v.IsObjectKind(value.KindString) {
		t.Fatal("IsObjectKind matched the wrong kind")
	}
	if value.Nil().IsObjectKind(value.KindTable) {
		t.Fatal("a non-object Value reported an object kind")
	}
}

func TestFromObjectPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("FromObject(nil) did not panic")
		}
	}()
	value.FromObject(nil)
}
