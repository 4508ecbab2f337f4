package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_Operators(t *testing.T) {
	toks := Scan("a => b -> c :: d += 1")
	texts := make([]string, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind != EOF {
			texts = append(texts, tok.Text)
		}
	}
	assert.Equal(t, []string{"a", "=>", "b", "->", "c", "::", "d", "+=", "1"}, texts)
}

func TestScan_SkipsComments(t *testing.T) {
	toks := Scan("x // trailing\n/* block\ncomment */ y")
	require.Len(t, toks, 3) // x, y, EOF
	assert.Equal(t, "x", toks[0].Text)
	assert.Equal(t, "y", toks[1].Text)
	assert.Equal(t, 3, toks[1].Line, "line counting must survive block comments")
}

func TestScan_Literals(t *testing.T) {
	toks := Scan(`balance = 0x1f + 1_000; name = "hi";`)
	assert.Equal(t, Number, toks[2].Kind)
	assert.Equal(t, "0x1f", toks[2].Text)
	assert.Equal(t, "1_000", toks[4].Text)
	assert.Equal(t, String, toks[8].Kind)
}

func TestCursor_SkipBalanced(t *testing.T) {
	cur := NewCursor(Scan("( a ( b ) c ) tail"))
	inner := cur.SkipBalanced("(", ")")
	require.Len(t, inner, 5)
	assert.Equal(t, "tail", cur.Peek().Text)

	// cursor not on the opener is a no-op
	cur2 := NewCursor(Scan("x ( y )"))
	assert.Nil(t, cur2.SkipBalanced("(", ")"))
	assert.Equal(t, "x", cur2.Peek().Text)
}
