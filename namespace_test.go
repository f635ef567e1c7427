package mmf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceQualify(t *testing.T) {
	a := assert.New(t)
	a.Equal(`Local\foo`, ENamespace.Local().qualify("foo"))
	a.Equal(`Global\foo`, ENamespace.Global().qualify("foo"))
	a.Equal("foo", ENamespace.Custom().qualify("foo"))
}

func TestNamespaceString(t *testing.T) {
	a := assert.New(t)
	a.Equal("Local", ENamespace.Local().String())
	a.Equal("Global", ENamespace.Global().String())
	a.Equal("Custom(unqualified)", ENamespace.Custom().String())
}

func TestParseNamespace(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	n, err := ParseNamespace("global")
	require.NoError(err)
	a.Equal(ENamespace.Global(), n)

	_, err = ParseNamespace("bogus")
	require.Error(err)
}

func TestSplitName(t *testing.T) {
	a := assert.New(t)

	ns, file := splitName(`Global\thing`)
	a.Equal("Global", ns)
	a.Equal("thing", file)

	ns, file = splitName("unqualified")
	a.Equal("", ns)
	a.Equal("unqualified", file)
}
