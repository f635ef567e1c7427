package mmf

import (
	"reflect"
	"strings"

	"github.com/JeffreyRichter/enum/enum"
)

// Namespace selects which Windows kernel object namespace a mapping's name
// is qualified into.
type Namespace uint8

// ENamespace exposes Namespace's named variants for discovery, e.g.
// ENamespace.Local().
var ENamespace = Namespace(0)

// Local qualifies a name into the caller's session namespace (`Local\`),
// visible only within the same logon session.
func (Namespace) Local() Namespace { return Namespace(0) }

// Global qualifies a name into the machine-wide namespace (`Global\`),
// visible across sessions (requires SeCreateGlobalPrivilege on some hosts).
func (Namespace) Global() Namespace { return Namespace(1) }

// Custom leaves the name unqualified; the caller is responsible for
// supplying any prefix the name needs.
func (Namespace) Custom() Namespace { return Namespace(2) }

func (n Namespace) String() string {
	if n == Namespace(2).Custom() {
		return "Custom(unqualified)"
	}
	return enum.StringInt(n, reflect.TypeOf(n))
}

// ParseNamespace parses one of "Local"/"Global"/"Custom", case-insensitively.
func ParseNamespace(s string) (Namespace, error) {
	v, err := enum.ParseInt(reflect.TypeOf((*Namespace)(nil)), s, true, true)
	if err != nil {
		return 0, err
	}
	return v.(Namespace), nil
}

// qualify prepends the namespace's kernel-object prefix to name. Custom
// returns name unchanged.
func (n Namespace) qualify(name string) string {
	switch n {
	case Namespace(0).Local():
		return `Local\` + name
	case Namespace(1).Global():
		return `Global\` + name
	default:
		return name
	}
}

// splitName splits a fully-qualified mapping name on its first backslash.
func splitName(full string) (namespace, filename string) {
	if idx := strings.IndexByte(full, '\\'); idx >= 0 {
		return full[:idx], full[idx+1:]
	}
	return "", full
}
