package fence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = "# T\n" +
	"\n" +
	"```jsx\n" +
	"<A />\n" +
	"```\n" +
	"\n" +
	"```tsx title=\"x\"\n" +
	"b\n" +
	"```\n" +
	"\n" +
	"~~~js\n" +
	"c\n" +
	"~~~\n" +
	"\n" +
	"  ```js\n" +
	"  d\n" +
	"  ```\n" +
	"\n" +
	"```\n" +
	"plain\n" +
	"```\n"

func TestParse(t *testing.T) {
	t.Parallel()

	blocks, err := Parse([]byte(document))
	require.NoError(t, err)
	require.Len(t, blocks, 5)

	type summary struct {
		lang, attrs      string
		indent           int
		startLine, endLn int
	}

	got := make([]summary, 0, len(blocks))
	for _, b := range blocks {
		got = append(got, summary{b.Lang, b.Attrs, b.Indent, b.StartLine, b.EndLine})
	}

	assert.Equal(t, []summary{
		{"jsx", "", 0, 3, 5},
		{"tsx", `title="x"`, 0, 7, 9},
		{"js", "", 0, 11, 13},
		{"js", "", 2, 15, 17},
		{"", "", 0, 19, 21},
	}, got)
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	blocks, err := Parse([]byte("no code here\n"))
	require.NoError(t, err)
	assert.Empty(t, blocks)

	blocks, err = Parse([]byte("```js\n```\n"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Equal(t, 2, blocks[0].EndLine)
}

func TestParseInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		info, lang, attrs string
	}{
		{"jsx", "jsx", ""},
		{" jsx ", "jsx", ""},
		{"jsx {1,3}", "jsx", "{1,3}"},
		{`js title="a b"  `, "js", `title="a b"`},
		{"", "", ""},
	}

	for _, tt := range tests {
		lang, attrs := parseInfo([]byte(tt.info))
		assert.Equal(t, tt.lang, lang, tt.info)
		assert.Equal(t, tt.attrs, attrs, tt.info)
	}
}
