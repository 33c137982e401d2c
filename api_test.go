package demangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemangleSuccess(t *testing.T) {
	out, ok := Demangle([]byte("saveOnQuitOverlay__Fv"))
	require.True(t, ok)
	assert.Equal(t, "saveOnQuitOverlay(void)", out)
}

// TestDemangleSwallowAndEcho checks that every failing input is echoed
// back unchanged rather than surfacing the parse error.
func TestDemangleSwallowAndEcho(t *testing.T) {
	tests := []string{
		"",
		"aa__aa",
		"99short",
		"Q0",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			out, ok := Demangle([]byte(in))
			assert.False(t, ok)
			assert.Equal(t, in, out)
		})
	}
}

func TestCxxSymbolAccessors(t *testing.T) {
	sym, err := Parse([]byte("AddAlignment__9ivTSolverUiP12ivInteractorP7ivTGlue"))
	require.NoError(t, err)

	require.Len(t, sym.Type.FunctionParams(), 3)
	assert.Nil(t, sym.Type.FunctionReturn())
	assert.Equal(t, "AddAlignment", sym.Name.Base())
	require.Len(t, sym.Name.Segments, 2)
}

func TestErrorKindStringAndAs(t *testing.T) {
	_, err := Parse([]byte(""))
	require.Error(t, err)

	de, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "unexpected end of input", de.Kind.String())
	assert.Contains(t, de.Error(), "unexpected end of input")
}
