package objects

import "github.com/ember-lang/ember/internal/value"

// UserData wraps an arbitrary host-owned value (a *sql.DB, a gRPC
// connection, ...) so stdlib modules can hand it back to script code as
// an opaque handle without the VM needing to know anything about it.
// The GC treats it as a leaf: it has no outgoing Value references, but
// it may implement io.Closer, in which case the sweep phase (see
// internal/gc) calls Close when the handle becomes unreachable.
type UserData struct {
	value.Header
	Tag  string
	Data interface{}
}

func NewUserData(tag string, data interface{}) *UserData {
	u := &UserData{Tag: tag, Data: data}
	u.Header = value.NewHeader(value.KindUserData)
	return u
}
