package objects

import (
	"io"

	"github.com/ember-lang/ember/internal/value"
)

// Host is the embedding API a CClosure's Go function sees. It is
// defined here, not in internal/vm, so that objects.CClosure (and the
// stdlib package that constructs CClosures) never need to import
// internal/vm — internal/vm implements Host, breaking what would
// otherwise be an import cycle.
type Host interface {
	Argc() int
	Arg(i int) value.Value

	Push(v value.Value)
	Pop() value.Value

	Intern(s string) *String
	NewTable() *Table
	NewCClosure(name string, fn HostFunc) *CClosure
	NewUserData(tag string, data interface{}) *UserData

	// Protect/Unprotect register/release a heap object in the VM's
	// gc-protect root set, for locals that must survive an allocation
	// that happens before they're reachable any other way.
	Protect(o value.Object)
	Unprotect(o value.Object)

	// RuntimeErrorf formats a message and produces an error value the
	// VM will surface as a runtime error with a formatted stack trace.
	RuntimeErrorf(format string, args ...interface{}) error

	// Require compiles and runs the module at path, returning its
	// top-level return value; this is what the require() stdlib
	// function delegates to.
	Require(path string) (value.Value, error)

	Stdout() io.Writer
}

// HostFunc is a host function: given the embedding API and the count of
// arguments pushed by the caller, it returns one Value.
type HostFunc func(h Host, argc int) (value.Value, error)

// CClosure wraps a host-language function pointer.
type CClosure struct {
	value.Header
	Name string
	Fn   HostFunc
}

func NewCClosure(name string, fn HostFunc) *CClosure {
	c := &CClosure{Name: name, Fn: fn}
	c.Header = value.NewHeader(value.KindCClosure)
	return c
}
