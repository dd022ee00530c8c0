package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple file", "main.go", false},
		{"nested file", "src/db/query.go", false},
		{"current dir prefix", "./main.go", false},
		{"absolute path", "/etc/passwd", true},
		{"traversal", "../secrets.txt", true},
		{"sneaky traversal", "src/../../outside.go", true},
		{"hidden file", ".env", true},
		{"hidden directory", ".git/config", true},
		{"hidden nested", "src/.secrets/key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateGlobPattern(t *testing.T) {
	assert.NoError(t, validateGlobPattern("**/*.go"))
	assert.NoError(t, validateGlobPattern("internal/**/*_test.go"))
	assert.Error(t, validateGlobPattern("/etc/*"))
	assert.Error(t, validateGlobPattern("../**"))
	assert.Error(t, validateGlobPattern(".git/*"))
	assert.Error(t, validateGlobPattern("**/.env"))
}

func TestReadFileToolRequiresInput(t *testing.T) {
	tool := NewReadFileTool(&fakeRepo{})
	_, err := tool.Execute(context.Background(), "   ")
	assert.Error(t, err)
}

func TestGrepToolFormatsMatches(t *testing.T) {
	repo := &fakeRepo{files: map[string]string{"a.go": "x"}}
	tool := NewGrepTool(repo)

	out, err := tool.Execute(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "No matches found", out)
}

func TestGlobToolEmptyResult(t *testing.T) {
	tool := NewGlobTool(&fakeRepo{})
	out, err := tool.Execute(context.Background(), "**/*.rs")
	require.NoError(t, err)
	assert.Equal(t, "No files found matching pattern", out)
}

func TestRegistryIsReadOnly(t *testing.T) {
	tools := NewToolRegistry(&fakeRepo{})
	for _, tool := range tools {
		assert.NotEqual(t, "bash", tool.Name())
		assert.NotEqual(t, "write_file", tool.Name())
	}
	assert.Len(t, tools, 3)
}

func TestTruncateOutput(t *testing.T) {
	short := "small"
	assert.Equal(t, short, truncateOutput(short))

	long := strings.Repeat("y", MaxToolOutputLength+10)
	got := truncateOutput(long)
	assert.True(t, strings.HasSuffix(got, "[output truncated]"))
	assert.Less(t, len(got), len(long)+30)
}
