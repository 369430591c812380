package scopeclose

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIgnoreComment(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"//scopeclose:ignore", true},
		{"// scopeclose:ignore", true},
		{"//scopeclose:ignore - closed by caller", true},
		{"//scopeclose:ignored", false},
		{"//goroutinectx:ignore", false},
		{"// regular comment", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isIgnoreComment(tt.text), tt.text)
	}
}

func TestIgnoreLines(t *testing.T) {
	src := `package p

func f() {
	//scopeclose:ignore
	g()
	g() //scopeclose:ignore
}

func g() {}
`
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	require.NoError(t, err)

	assert.Equal(t, map[int]bool{4: true, 6: true}, ignoreLines(fset, file))
}
