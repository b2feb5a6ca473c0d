package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSubDir_CreatesUnderBase(t *testing.T) {
	base := t.TempDir()

	got, err := EnsureSubDir(base, "uploads")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "uploads"), got)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureSubDir_UsesCWDWhenBaseEmpty(t *testing.T) {
	tmp := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	got, err := EnsureSubDir("", "staging")
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(tmp, "staging"))
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, want, gotResolved)
}

func TestEnsureSubDir_Idempotent(t *testing.T) {
	base := t.TempDir()

	first, err := EnsureSubDir(base, "x")
	require.NoError(t, err)
	second, err := EnsureSubDir(base, "x")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureSubDir_FailsWhenPathIsFile(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "taken"), []byte("x"), 0o600))

	_, err := EnsureSubDir(base, "taken")
	require.Error(t, err)
}

func TestRemoveStaged(t *testing.T) {
	p := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(p, []byte("png"), 0o600))

	require.NoError(t, RemoveStaged(p))
	_, err := os.Stat(p)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, RemoveStaged(p), "second removal is a no-op")
	require.NoError(t, RemoveStaged(""))
}
