package stdlib

import (
	"gopkg.in/yaml.v3"

	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

// InstallYAML registers require("yaml")'s two functions directly as
// flat globals (this language has no module-table indirection yet, so
// virtual packages just register flatly).
func InstallYAML(env *objects.Table, h objects.Host) {
	register(env, h, "yaml_encode", yamlEncodeFn)
	register(env, h, "yaml_decode", yamlDecodeFn)
}

func yamlEncodeFn(h objects.Host, argc int) (value.Value, error) {
	if argc < 1 {
		return value.Nil(), h.RuntimeErrorf("yaml_encode expects one value")
	}
	goVal := valueToGo(h.Arg(0))
	out, err := yaml.Marshal(goVal)
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("yaml_encode: %v", err)
	}
	return value.FromObject(h.Intern(string(out))), nil
}

func yamlDecodeFn(h objects.Host, argc int) (value.Value, error) {
	text, ok := argString(h, 0)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("yaml_decode expects a string")
	}
	var data interface{}
	if err := yaml.Unmarshal([]byte(text), &data); err != nil {
		return value.Nil(), h.RuntimeErrorf("yaml_decode: %v", err)
	}
	return goToValue(h, data), nil
}

// valueToGo converts an ember Value into the interface{} shape yaml.v3
// (and, by the same logic, a JSON encoder) expects to marshal.
func valueToGo(v value.Value) interface{} {
	switch {
	case v.IsNil():
		return nil
	case v.IsBool():
		return v.AsBool()
	case v.IsNumber():
		return v.AsNumber()
	case v.IsObjectKind(value.KindString):
		return string(v.AsObject().(*objects.String).Bytes)
	case v.IsObjectKind(value.KindTable):
		t := v.AsObject().(*objects.Table)
		m := make(map[string]interface{}, t.Len())
		t.Each(func(k, val value.Value) {
			m[displayString(k)] = valueToGo(val)
		})
		return m
	default:
		return nil
	}
}

// goToValue is the inverse of valueToGo, mirroring inferFromYaml's
// case-by-case reconstruction (including yaml.v3's map[string]interface{}
// decoding shape for mappings, and []interface{} for sequences, stored
// here as a table keyed 1..N).
func goToValue(h objects.Host, data interface{}) value.Value {
	switch d := data.(type) {
	case nil:
		return value.Nil()
	case bool:
		return value.Bool(d)
	case int:
		return value.Number(float64(d))
	case int64:
		return value.Number(float64(d))
	case float64:
		return value.Number(d)
	case string:
		return value.FromObject(h.Intern(d))
	case []byte:
		return value.FromObject(h.Intern(string(d)))
	case []interface{}:
		t := h.NewTable()
		h.Protect(t)
		defer h.Unprotect(t)
		for i, item := range d {
			t.Set(value.Number(float64(i+1)), goToValue(h, item))
		}
		return value.FromObject(t)
	case map[string]interface{}:
		t := h.NewTable()
		h.Protect(t)
		defer h.Unprotect(t)
		for k, item := range d {
			t.Set(value.FromObject(h.Intern(k)), goToValue(h, item))
		}
		return value.FromObject(t)
	default:
		return value.Nil()
	}
}
