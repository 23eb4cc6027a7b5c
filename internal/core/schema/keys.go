package schema

import (
	"strconv"
	"strings"
)

const (
	keySeparator   = "_"
	scopeSeparator = " "
)

// MakeKey builds a field key of the form "<id>[_<suffix>] <scope>". The scope
// is the owning parameter list's GUID, or the scene index for presenter
// fields.
func MakeKey(id int, suffix, scope string) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(id))
	if suffix != "" {
		b.WriteString(keySeparator)
		b.WriteString(suffix)
	}
	if scope != "" {
		b.WriteString(scopeSeparator)
		b.WriteString(scope)
	}
	return b.String()
}

// ResolveID extracts the parameter id prefix of a key.
func ResolveID(key string) (int, bool) {
	end := strings.IndexAny(key, keySeparator+scopeSeparator)
	if end < 0 {
		end = len(key)
	}
	id, err := strconv.Atoi(key[:end])
	if err != nil {
		return 0, false
	}
	return id, true
}

func DisplayName(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return name + " " + suffix
}
