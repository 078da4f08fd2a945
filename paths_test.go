package marklint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "relative path under working directory",
			path: filepath.Join("docs", "intro.md"),
			want: "docs/intro.md",
		},
		{
			name: "absolute path under working directory",
			path: filepath.Join(wd, "docs", "intro.md"),
			want: "docs/intro.md",
		},
		{
			name: "path outside working directory stays as given",
			path: string(filepath.Separator) + filepath.Join("elsewhere", "doc.md"),
			want: "/elsewhere/doc.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayPath(tt.path))
		})
	}
}

func TestMustAbs(t *testing.T) {
	abs := MustAbs("docs/intro.md")
	assert.True(t, filepath.IsAbs(abs))
}
