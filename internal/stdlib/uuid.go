package stdlib

import (
	"github.com/google/uuid"

	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

// InstallUUID registers the uuid generator/validator functions as flat
// globals.
func InstallUUID(env *objects.Table, h objects.Host) {
	register(env, h, "uuid_new", uuidNewFn)
	register(env, h, "uuid_is_valid", uuidIsValidFn)
}

func uuidNewFn(h objects.Host, argc int) (value.Value, error) {
	return value.FromObject(h.Intern(uuid.New().String())), nil
}

func uuidIsValidFn(h objects.Host, argc int) (value.Value, error) {
	s, ok := argString(h, 0)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("uuid_is_valid expects a string")
	}
	_, err := uuid.Parse(s)
	return value.Bool(err == nil), nil
}
