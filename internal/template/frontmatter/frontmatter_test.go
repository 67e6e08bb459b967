package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMeta Meta
		wantBody string
		wantErr  bool
	}{
		{
			name:     "no front matter",
			input:    "hello {{.projectName}}\n",
			wantMeta: Meta{},
			wantBody: "hello {{.projectName}}\n",
		},
		{
			name:     "yaml when",
			input:    "---\nwhen: .useTS\n---\nbody\n",
			wantMeta: Meta{When: ".useTS"},
			wantBody: "body\n",
		},
		{
			name:     "yaml boolean when",
			input:    "---\nwhen: false\n---\nbody",
			wantMeta: Meta{When: "false"},
			wantBody: "body",
		},
		{
			name:     "yaml extend with single replace",
			input:    "---\nextend: ./base.txt\nreplace: X\n---\nY\n",
			wantMeta: Meta{Extend: "./base.txt", Replace: []string{"X"}},
			wantBody: "Y\n",
		},
		{
			name:     "yaml replace list",
			input:    "---\nextend: base\nreplace:\n  - A\n  - B\n---\n",
			wantMeta: Meta{Extend: "base", Replace: []string{"A", "B"}, ReplaceIsList: true},
			wantBody: "",
		},
		{
			name:     "toml front matter",
			input:    "+++\nwhen = \"eq .lang \\\"go\\\"\"\nreplace = [\"A\"]\n+++\nbody\n",
			wantMeta: Meta{When: `eq .lang "go"`, Replace: []string{"A"}, ReplaceIsList: true},
			wantBody: "body\n",
		},
		{
			name:     "unterminated fence is content",
			input:    "---\nnot front matter\n",
			wantMeta: Meta{},
			wantBody: "---\nnot front matter\n",
		},
		{
			name:     "byte order mark is ignored",
			input:    "\ufeff---\nwhen: .x\n---\nbody",
			wantMeta: Meta{When: ".x"},
			wantBody: "body",
		},
		{
			name:    "invalid yaml",
			input:   "---\nwhen: [unclosed\n---\nbody",
			wantErr: true,
		},
		{
			name:    "replace of wrong type",
			input:   "---\nreplace: {a: b}\n---\nbody",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := Parse([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMeta, meta)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestNormalizeBody(t *testing.T) {
	assert.Equal(t, "abc\n", NormalizeBody("\n\n  abc  \n\n\n"))
	assert.Equal(t, "\n", NormalizeBody("   "))
	assert.Equal(t, "a\nb\n", NormalizeBody("a\nb"))
}

func TestMeta_HasMeta(t *testing.T) {
	assert.False(t, Meta{}.HasMeta())
	assert.True(t, Meta{When: "x"}.HasMeta())
	assert.True(t, Meta{Replace: []string{"x"}}.HasMeta())
}
