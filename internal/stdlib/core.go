// Package stdlib registers the globals a script's environment table
// starts with — print, require, setproto — plus the functions of a
// handful of virtual packages (yaml, uuid, sqlite, grpc), registered at
// install time as flat globals such as yaml_encode and uuid_new. None of this
// package imports internal/vm; everything goes through objects.Host.
package stdlib

import (
	"fmt"

	"github.com/ember-lang/ember/internal/config"
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

// Install registers every core global into env, the table a VM's
// top-level closure captures as its environment upvalue.
func Install(env *objects.Table, h objects.Host) {
	register(env, h, config.PrintFuncName, hostPrint)
	register(env, h, config.RequireFuncName, hostRequire)
	register(env, h, config.SetProtoFuncName, hostSetProto)
	InstallYAML(env, h)
	InstallUUID(env, h)
	InstallSQLite(env, h)
	InstallGRPC(env, h)
}

func register(env *objects.Table, h objects.Host, name string, fn objects.HostFunc) {
	s := h.Intern(name)
	h.Protect(s)
	cc := h.NewCClosure(name, fn)
	env.Set(value.FromObject(s), value.FromObject(cc))
	h.Unprotect(s)
}

// hostPrint writes every argument separated by a tab, then a trailing
// newline, exactly as the globals table's doc comment specifies.
func hostPrint(h objects.Host, argc int) (value.Value, error) {
	w := h.Stdout()
	for i := 0; i < argc; i++ {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, displayString(h.Arg(i)))
	}
	fmt.Fprintln(w)
	return value.Nil(), nil
}

func displayString(v value.Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		return formatNumber(v.AsNumber())
	case v.IsObjectKind(value.KindString):
		return string(v.AsObject().(*objects.String).Bytes)
	case v.IsObjectKind(value.KindTable):
		return "table"
	case v.IsObjectKind(value.KindClosure), v.IsObjectKind(value.KindCClosure):
		return "function"
	default:
		return v.TypeName()
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func argString(h objects.Host, i int) (string, bool) {
	v := h.Arg(i)
	if !v.IsObjectKind(value.KindString) {
		return "", false
	}
	return string(v.AsObject().(*objects.String).Bytes), true
}

// hostRequire delegates to Host.Require, the module-loading hook
// cmd/ember wires to compile+run a sibling source file against the
// same VM.
func hostRequire(h objects.Host, argc int) (value.Value, error) {
	if argc < 1 {
		return value.Nil(), h.RuntimeErrorf("require expects a module path")
	}
	path, ok := argString(h, 0)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("require expects a string path")
	}
	return h.Require(path)
}

// hostSetProto installs tbl's metaproto, the hook setproto(tbl, proto)
// exposes for prototype-style dispatch.
func hostSetProto(h objects.Host, argc int) (value.Value, error) {
	if argc < 2 {
		return value.Nil(), h.RuntimeErrorf("setproto expects (table, proto)")
	}
	tblArg := h.Arg(0)
	protoArg := h.Arg(1)
	if !tblArg.IsObjectKind(value.KindTable) {
		return value.Nil(), h.RuntimeErrorf("setproto expects a table")
	}
	t := tblArg.AsObject().(*objects.Table)
	if protoArg.IsNil() {
		t.Proto = nil
		return tblArg, nil
	}
	if !protoArg.IsObjectKind(value.KindTable) {
		return value.Nil(), h.RuntimeErrorf("setproto expects a table proto")
	}
	t.Proto = protoArg.AsObject().(*objects.Table)
	return tblArg, nil
}
