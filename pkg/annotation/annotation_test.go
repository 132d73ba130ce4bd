package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected Annotations
	}{
		{
			name:     "empty",
			doc:      "",
			expected: Annotations{},
		},
		{
			name:     "var with description",
			doc:      "Name of the customer.\n@var string the display name",
			expected: Annotations{"var": {"string the display name"}},
		},
		{
			name:     "docblock",
			doc:      "/**\n * @var Child[]|null\n * @required\n */",
			expected: Annotations{"var": {"Child[]|null"}, "required": {""}},
		},
		{
			name:     "repeated annotation keeps order",
			doc:      "@param int $a\n@param string $b",
			expected: Annotations{"param": {"int $a", "string $b"}},
		},
		{
			name:     "trailing whitespace and CRLF",
			doc:      "@var   float  \r\n@deprecated\r\n",
			expected: Annotations{"var": {"float"}, "deprecated": {""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.doc))
		})
	}
}

func TestDeclaredType(t *testing.T) {
	a := Parse("@var Foo|null some text\n@param\n@required")

	typ, ok := a.DeclaredType("var")
	require.True(t, ok)
	assert.Equal(t, "Foo|null", typ)

	typ, ok = a.DeclaredType("param")
	require.True(t, ok)
	assert.Equal(t, "", typ)

	_, ok = a.DeclaredType("return")
	assert.False(t, ok)

	assert.True(t, a.Has("required"))
	assert.False(t, a.Has("optional"))
}
