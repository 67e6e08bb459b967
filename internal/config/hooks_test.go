package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	target    string
	doNotCopy []string
	data      map[string]any
}

func newFakeSession(target string) *fakeSession {
	return &fakeSession{target: target, data: map[string]any{}}
}

func (s *fakeSession) ProjectName() string { return "demo" }
func (s *fakeSession) TargetDir() string { return s.target }
func (s *fakeSession) AddDoNotCopy(paths ...string) { s.doNotCopy = append(s.doNotCopy, paths...) }
func (s *fakeSession) SetData(key string, value any) { s.data[key] = value }
func (s *fakeSession) Data() map[string]any { return s.data }

type recordingRunner struct {
	commands []string
	fail     string
}

func (r *recordingRunner) Run(_ context.Context, dir, command string) error {
	r.commands = append(r.commands, dir+": "+command)
	if command == r.fail {
		return errors.New("exit status 1")
	}
	return nil
}

func TestCompileHook(t *testing.T) {
	runner := &recordingRunner{}
	hook := CompileHook(HookSpec{
		DoNotCopy: []string{"CHANGELOG.md"},
		Data:      map[string]any{"year": 2026},
		Run:       []string{"git init", "npm install"},
	}, runner)

	s := newFakeSession("/work/demo")
	require.NoError(t, hook(context.Background(), s))

	assert.Equal(t, []string{"CHANGELOG.md"}, s.doNotCopy)
	assert.Equal(t, 2026, s.data["year"])
	assert.Equal(t, []string{"/work/demo: git init", "/work/demo: npm install"}, runner.commands)
}

func TestCompileHook_StopsOnFailure(t *testing.T) {
	runner := &recordingRunner{fail: "false"}
	hook := CompileHook(HookSpec{Run: []string{"false", "echo never"}}, runner)

	err := hook(context.Background(), newFakeSession("/tmp"))
	assert.Error(t, err)
	assert.Len(t, runner.commands, 1)
}

func TestCompileHook_NoRunner(t *testing.T) {
	hook := CompileHook(HookSpec{Run: []string{"ls"}}, nil)
	assert.Error(t, hook(context.Background(), newFakeSession("/tmp")))
}

func TestShellRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	dir := t.TempDir()
	runner := NewShellRunner()

	require.NoError(t, runner.Run(context.Background(), dir, "echo hello > out.txt"))
	content, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))

	err = runner.Run(context.Background(), dir, "echo oops >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}
