package demangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOneType(t *testing.T, encoded string) *Type {
	t.Helper()
	c := newCursor([]byte(encoded))
	st := &parseState{}
	typ, err := parseType(c, st)
	require.NoError(t, err)
	assert.True(t, c.atEnd(), "expected encoding to be fully consumed")
	return typ
}

func TestParseTypeBuiltins(t *testing.T) {
	tests := []struct {
		encoded string
		want    BuiltinKind
	}{
		{"v", BuiltinVoid},
		{"b", BuiltinBool},
		{"c", BuiltinChar},
		{"Sc", BuiltinSignedChar},
		{"Uc", BuiltinUnsignedChar},
		{"w", BuiltinWCharT},
		{"s", BuiltinShort},
		{"Us", BuiltinUnsignedShort},
		{"i", BuiltinInt},
		{"Ui", BuiltinUnsignedInt},
		{"l", BuiltinLong},
		{"Ul", BuiltinUnsignedLong},
		{"x", BuiltinLongLong},
		{"Ux", BuiltinUnsignedLongLong},
		{"f", BuiltinFloat},
		{"d", BuiltinDouble},
		{"r", BuiltinLongDouble},
	}
	for _, tt := range tests {
		t.Run(tt.encoded, func(t *testing.T) {
			typ := parseOneType(t, tt.encoded)
			require.Equal(t, TypeBuiltin, typ.Kind)
			assert.Equal(t, tt.want, typ.Builtin)
		})
	}
}

func TestParseTypeUnknownCode(t *testing.T) {
	c := newCursor([]byte("Z"))
	_, err := parseType(c, &parseState{})
	de, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnknownTypeCode, de.Kind)
}

func TestParseTypePointerAndReference(t *testing.T) {
	typ := parseOneType(t, "P12ivInteractor")
	require.Equal(t, TypePointer, typ.Kind)
	require.Equal(t, TypeNamed, typ.Inner.Kind)
	assert.Equal(t, "ivInteractor", typ.Inner.Name.Base())

	typ = parseOneType(t, "Ri")
	require.Equal(t, TypeReference, typ.Kind)
	assert.Equal(t, BuiltinInt, typ.Inner.Builtin)
}

func TestParseTypeArray(t *testing.T) {
	typ := parseOneType(t, "A10_i")
	require.Equal(t, TypeArray, typ.Kind)
	assert.False(t, typ.ArrayUnknown)
	assert.Equal(t, 10, typ.ArrayLen)
	assert.Equal(t, BuiltinInt, typ.Inner.Builtin)

	typ = parseOneType(t, "A_c")
	require.Equal(t, TypeArray, typ.Kind)
	assert.True(t, typ.ArrayUnknown)
}

func TestParseTypeQualifiers(t *testing.T) {
	typ := parseOneType(t, "Ci")
	require.Equal(t, TypeQualified, typ.Kind)
	assert.Equal(t, QualConst, typ.Quals)
	assert.Equal(t, BuiltinInt, typ.Inner.Builtin)

	// CV-qualifier folding is idempotent and never nests (invariant 5,
	// property P3): CVi collapses to one Qualified wrapper with the
	// union of qualifier bits rather than a Qualified(Qualified(...)).
	typ = parseOneType(t, "CVi")
	require.Equal(t, TypeQualified, typ.Kind)
	assert.Equal(t, QualConst|QualVolatile, typ.Quals)
	assert.NotEqual(t, TypeQualified, typ.Inner.Kind)
}

func TestParseTypeFunctionType(t *testing.T) {
	typ := parseOneType(t, "FiPc_v")
	require.Equal(t, TypeFunction, typ.Kind)
	require.Len(t, typ.Params, 2)
	assert.Equal(t, BuiltinInt, typ.Params[0].Builtin)
	assert.Equal(t, TypePointer, typ.Params[1].Kind)
	require.NotNil(t, typ.Return)
	assert.Equal(t, BuiltinVoid, typ.Return.Builtin)
}

func TestParseTypeBackReference(t *testing.T) {
	// T-codes only resolve against btypes entries appended so far; a
	// reference before any parameter has been recorded is out of range.
	_, err := parseType(newCursor([]byte("T1")), &parseState{})
	de, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrBackRefOutOfRange, de.Kind)

	st := &parseState{}
	c := newCursor([]byte("iP12ivInteractorT1"))
	first, err := parseType(c, st)
	require.NoError(t, err)
	st.appendBType(first)
	second, err := parseType(c, st)
	require.NoError(t, err)
	st.appendBType(second)

	back, err := parseType(c, st)
	require.NoError(t, err)
	require.True(t, c.atEnd())
	assert.Equal(t, BuiltinInt, back.Builtin)
	assert.True(t, back.BackReferenced)
	assert.False(t, first.BackReferenced)
}

func TestParseTypeRepeatCode(t *testing.T) {
	st := &parseState{}
	c := newCursor([]byte("iN21"))
	first, err := parseType(c, st)
	require.NoError(t, err)
	st.appendBType(first)

	reps, err := parseRepeatCode(c, st)
	require.NoError(t, err)
	require.Len(t, reps, 2)
	for _, r := range reps {
		assert.Equal(t, BuiltinInt, r.Builtin)
		assert.True(t, r.BackReferenced)
	}
}

func TestParseTypeRecognizedGaps(t *testing.T) {
	for _, code := range []string{"B", "G", "e", "K"} {
		t.Run(code, func(t *testing.T) {
			_, err := parseType(newCursor([]byte(code)), &parseState{})
			de, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, ErrUnsupportedFeature, de.Kind)
		})
	}
}

func TestCollectParamsVoidMarker(t *testing.T) {
	st := &parseState{}
	params, err := collectParams(newCursor([]byte("v")), st, true, 0)
	require.NoError(t, err)
	assert.Empty(t, params)
	assert.Empty(t, st.btypes)
}

func TestCollectParamsOrdinary(t *testing.T) {
	st := &parseState{}
	params, err := collectParams(newCursor([]byte("iUiP12ivInteractor")), st, true, 0)
	require.NoError(t, err)
	require.Len(t, params, 3)
	assert.Len(t, st.btypes, 3)
}
