package demangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeStringBuiltins(t *testing.T) {
	assert.Equal(t, "int", (&Type{Kind: TypeBuiltin, Builtin: BuiltinInt}).String())
	assert.Equal(t, "unsigned int", (&Type{Kind: TypeBuiltin, Builtin: BuiltinUnsignedInt}).String())
}

func TestTypeStringPointerToNamed(t *testing.T) {
	typ := &Type{Kind: TypePointer, Inner: &Type{Kind: TypeNamed, Name: &Name{Segments: []NameSegment{{Identifier: "ivInteractor"}}}}}
	assert.Equal(t, "ivInteractor *", typ.String())
}

func TestTypeStringQualified(t *testing.T) {
	typ := &Type{Kind: TypeQualified, Quals: QualConst | QualVolatile, Inner: &Type{Kind: TypeBuiltin, Builtin: BuiltinInt}}
	assert.Equal(t, "const volatile int", typ.String())
}

func TestTypeStringPointerToFunction(t *testing.T) {
	// Clockwise-spiral composition: a pointer to a function needs
	// parens around `*name` so it doesn't bind as a function
	// returning a pointer.
	fn := &Type{Kind: TypeFunction, Return: &Type{Kind: TypeBuiltin, Builtin: BuiltinVoid}}
	typ := &Type{Kind: TypePointer, Inner: fn}
	assert.Equal(t, "void (*)(void)", typ.String())
}

func TestTypeStringArray(t *testing.T) {
	typ := &Type{Kind: TypeArray, ArrayLen: 4, Inner: &Type{Kind: TypeBuiltin, Builtin: BuiltinChar}}
	assert.Equal(t, declarator(typ, "buf"), "char buf[4]")
}

func TestParamsStringEmptyIsVoid(t *testing.T) {
	assert.Equal(t, "void", paramsString(nil))
}

func TestParamsStringBackReferenceMarker(t *testing.T) {
	p := &Type{Kind: TypeBuiltin, Builtin: BuiltinInt, BackReferenced: true}
	assert.Equal(t, "int &&", paramsString([]*Type{p}))
}

func TestNameSegmentTemplateRendering(t *testing.T) {
	seg := NameSegment{
		Identifier: "Pair",
		TemplateArgs: []TemplateArg{
			{Kind: TemplateArgType, Type: &Type{Kind: TypeBuiltin, Builtin: BuiltinInt}},
			{Kind: TemplateArgType, Type: &Type{Kind: TypeBuiltin, Builtin: BuiltinChar}},
		},
	}
	assert.Equal(t, "Pair<int, char>", seg.identifierText())
}

func TestQualifierSuffixOrder(t *testing.T) {
	require.Equal(t, " const volatile", qualifierSuffix(FlagIsConstMemberFn|FlagIsVolatileMemberFn))
	assert.Equal(t, "", qualifierSuffix(0))
}
