package dropzone

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_WatchesInboxDirectory(t *testing.T) {
	dir := t.TempDir()
	b, err := New(dir)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	path := filepath.Join(dir, "drop.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev, ok := WaitEvent(ctx, b)
	require.True(t, ok, "no event before timeout")
	assert.Equal(t, FileDropped, ev.Kind)
	assert.Equal(t, path, ev.Path)
}

func TestBridge_BurstKeepsFirstFile(t *testing.T) {
	dir := t.TempDir()
	b, err := New(dir)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(first, []byte("id\n1\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("id\n2\n"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Two files landing inside the settle window collapse to a single
	// drop, and it is the first file that wins.
	ev, ok := WaitEvent(ctx, b)
	require.True(t, ok, "no event before timeout")
	assert.Equal(t, FileDropped, ev.Kind)
	assert.Equal(t, first, ev.Path)

	quiet, quietCancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer quietCancel()
	_, extra := WaitEvent(quiet, b)
	assert.False(t, extra, "burst should announce exactly one file")
}

func TestBridge_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := New(dir)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".partial"), []byte("x"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, ok := WaitEvent(ctx, b)
	assert.False(t, ok, "hidden file should not produce an event")
}

func TestBridge_InjectFirstPathOnly(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	b.Inject("/data/a.csv", "/data/b.csv", "/data/c.csv")

	ev := <-b.Events()
	assert.Equal(t, FileDropped, ev.Kind)
	assert.Equal(t, "/data/a.csv", ev.Path)

	select {
	case extra := <-b.Events():
		t.Errorf("unexpected extra event %+v", extra)
	default:
	}
}

func TestBridge_InjectEmptyDropCancels(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	b.Inject()
	ev := <-b.Events()
	assert.Equal(t, DragCancelled, ev.Kind)
}

func TestBridge_DragLifecycle(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	b.InjectDragEnter()
	b.InjectDragCancelled()

	assert.Equal(t, Event{Kind: DragEnter}, <-b.Events())
	assert.Equal(t, Event{Kind: DragCancelled}, <-b.Events())
}
