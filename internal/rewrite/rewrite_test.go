package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper(_ context.Context, _, code string) (string, error) {
	return strings.ToUpper(code), nil
}

func noTransform(t *testing.T) Transform {
	t.Helper()

	return func(_ context.Context, lang, code string) (string, error) {
		t.Fatalf("unexpected transform of %s block %q", lang, code)

		return "", nil
	}
}

const mixed = "# Title\n\nSome prose.\n\n```js\nconst a = 1;\n```\n\nMore prose.\n\n```python\nprint(\"hi\")\n```\n"

func TestScan(t *testing.T) {
	t.Parallel()

	matches := Scan(mixed)
	require.Len(t, matches, 2)

	assert.Equal(t, "js", matches[0].Lang)
	assert.Equal(t, "const a = 1;", matches[0].Body)
	assert.Equal(t, "```js\nconst a = 1;\n```", matches[0].Block)
	assert.Equal(t, 5, matches[0].Line)
	assert.Equal(t, strings.Index(mixed, "```js"), matches[0].Start)

	assert.Equal(t, "python", matches[1].Lang)
	assert.Equal(t, 11, matches[1].Line)
}

func TestScanBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty body", "```js\n\n```\n", []string{""}},
		{"no body", "```jsx\n```\n\nprose\n\n```\nplain\n```\n", []string{""}},
		{"blank lines", "```js\na\n\n\nb\n```", []string{"a\n\n\nb"}},
		{"adjacent", "```js\na\n```\n```ts\nb\n```\n", []string{"a", "b"}},
		{"untagged", "```\nplain\n```\n", nil},
		{"space before tag", "``` js\nx\n```\n", nil},
		{"indented", "  ```js\nx\n  ```\n", nil},
		{"unclosed", "```js\nx\n", nil},
		{"closing with suffix", "```js\nx\n```js\ny\n```\n", []string{"x\n```js\ny"}},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var bodies []string
			for _, m := range Scan(tt.text) {
				bodies = append(bodies, m.Body)
			}

			assert.Equal(t, tt.want, bodies)
		})
	}
}

func TestRewriteIdentity(t *testing.T) {
	t.Parallel()

	texts := []string{
		"",
		"just prose\n",
		"```python\nprint(1)\n```\n",
		"```\nuntagged\n```\n",
	}

	for _, text := range texts {
		res := Rewrite(context.Background(), text, Langs("js", "jsx"), noTransform(t))

		assert.Equal(t, text, res.Text)
		assert.False(t, res.Changed())
		assert.Zero(t, res.Qualifying)
	}
}

func TestRewriteExample(t *testing.T) {
	t.Parallel()

	res := Rewrite(context.Background(), mixed, Langs("js"), upper)

	want := strings.Replace(mixed, "const a = 1;", "CONST A = 1;", 1)

	assert.Equal(t, want, res.Text)
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, 1, res.Qualifying)
	assert.Equal(t, 1, res.Replaced)
	assert.Empty(t, res.Failures)
	assert.Contains(t, res.Text, "```python\nprint(\"hi\")\n```")
}

func TestRewriteAllQualifying(t *testing.T) {
	t.Parallel()

	text := "a\n```jsx\none\n```\nb\n```tsx\ntwo\n```\nc\n```jsx\nthree\n```\n"

	var calls []string

	res := Rewrite(context.Background(), text, Langs("jsx", "tsx"), func(_ context.Context, lang, code string) (string, error) {
		calls = append(calls, lang+":"+code)

		return code + "!", nil
	})

	assert.Equal(t, []string{"jsx:one", "tsx:two", "jsx:three"}, calls)
	assert.Equal(t, "a\n```jsx\none!\n```\nb\n```tsx\ntwo!\n```\nc\n```jsx\nthree!\n```\n", res.Text)
	assert.Equal(t, 3, res.Replaced)

	for _, body := range []string{"\none\n", "\ntwo\n", "\nthree\n"} {
		assert.NotContains(t, res.Text, body)
	}
}

func TestRewriteFailureKeepsBlock(t *testing.T) {
	t.Parallel()

	text := "```js\nok1\n```\n\n```js\nbad\n```\n\n```js\nok2\n```\n"
	errBoom := errors.New("boom")

	res := Rewrite(context.Background(), text, Langs("js"), func(_ context.Context, _, code string) (string, error) {
		if code == "bad" {
			return "", errBoom
		}

		return "new_" + code, nil
	})

	assert.Equal(t, "```js\nnew_ok1\n```\n\n```js\nbad\n```\n\n```js\nnew_ok2\n```\n", res.Text)
	assert.Equal(t, 2, res.Replaced)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 5, res.Failures[0].Line)
	assert.ErrorIs(t, res.Failures[0], errBoom)
	assert.Contains(t, res.Failures[0].Error(), "block js at line 5")
}

func TestRewriteTrimsBody(t *testing.T) {
	t.Parallel()

	text := "```js\n\n   let x\n\n```\n"

	var got string

	res := Rewrite(context.Background(), text, Langs("js"), func(_ context.Context, _, code string) (string, error) {
		got = code

		return "\n  let y  \n\n", nil
	})

	assert.Equal(t, "let x", got)
	assert.Equal(t, "```js\nlet y\n```\n", res.Text)
}

func TestRewriteRoundTripStable(t *testing.T) {
	t.Parallel()

	text := "intro\n```js\n\n  same  \n\n```\noutro\n"

	res := Rewrite(context.Background(), text, Langs("js"), func(_ context.Context, _, code string) (string, error) {
		return "  " + code + "\n", nil
	})

	assert.Equal(t, text, res.Text)
	assert.False(t, res.Changed())
	assert.Equal(t, 1, res.Unchanged)
}

func TestRewriteDuplicateBlocks(t *testing.T) {
	t.Parallel()

	text := "```js\ndup\n```\ntext\n```js\ndup\n```\n"
	calls := 0

	res := Rewrite(context.Background(), text, Langs("js"), func(_ context.Context, _, code string) (string, error) {
		calls++

		return code + "_v2", nil
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, "```js\ndup_v2\n```\ntext\n```js\ndup_v2\n```\n", res.Text)
	assert.Equal(t, 2, res.Qualifying)
	assert.Equal(t, 1, res.Replaced)
}

func TestRewriteDuplicateBlocksFailure(t *testing.T) {
	t.Parallel()

	text := "```js\ndup\n```\ntext\n```js\ndup\n```\n\n```js\ndup\n```\n"

	res := Rewrite(context.Background(), text, Langs("js"), func(context.Context, string, string) (string, error) {
		return "", errors.New("boom")
	})

	assert.Equal(t, text, res.Text)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Line)
	assert.Equal(t, []int{5, 9}, res.Failures[0].Copies)
	assert.EqualError(t, res.Failures[0], "block js at line 1 (copies at 5, 9): boom")
}

func TestRewriteEmptyBlockKeepsProse(t *testing.T) {
	t.Parallel()

	text := "```jsx\n```\n\nSome prose here.\n\n```\nplain\n```\n"

	var got []string

	res := Rewrite(context.Background(), text, Langs("jsx"), func(_ context.Context, _, code string) (string, error) {
		got = append(got, code)

		return "X", nil
	})

	assert.Equal(t, []string{""}, got)
	assert.Equal(t, "```jsx\nX\n```\n\nSome prose here.\n\n```\nplain\n```\n", res.Text)
}

func TestRewriteSameBodyDifferentTags(t *testing.T) {
	t.Parallel()

	text := "```js\nx\n```\n```ts\nx\n```\n"

	res := Rewrite(context.Background(), text, Langs("js", "ts"), func(_ context.Context, lang, code string) (string, error) {
		return lang + "(" + code + ")", nil
	})

	assert.Equal(t, "```js\njs(x)\n```\n```ts\nts(x)\n```\n", res.Text)
}

func TestRewriteCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text := "```js\na\n```\n"
	res := Rewrite(ctx, text, Langs("js"), noTransform(t))

	assert.Equal(t, text, res.Text)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0], context.Canceled)
}

func TestLangs(t *testing.T) {
	t.Parallel()

	pred := Langs("jsx", "tsx")

	assert.True(t, pred("jsx"))
	assert.True(t, pred("tsx"))
	assert.False(t, pred("js"))
	assert.False(t, pred(""))
	assert.False(t, Langs()("jsx"))
}
