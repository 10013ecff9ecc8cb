package schedule

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlotPoolCreatesDirectories(t *testing.T) {
	workDir := t.TempDir()
	pool, err := NewSlotPool(workDir, 3)
	require.NoError(t, err)
	require.Equal(t, 3, pool.Size())

	for i := 0; i < 3; i++ {
		slot := pool.Slot(i)
		assert.Equal(t, i, slot.Index)
		assert.Equal(t, filepath.Join(workDir, fmt.Sprintf("worker_%d", i)), slot.Dir)
		info, err := os.Stat(slot.Dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestNewSlotPoolRejectsNonPositiveCount(t *testing.T) {
	_, err := NewSlotPool(t.TempDir(), 0)
	require.Error(t, err)
	_, err = NewSlotPool(t.TempDir(), -1)
	require.Error(t, err)
}

func TestSlotPoolCleanup(t *testing.T) {
	workDir := t.TempDir()
	pool, err := NewSlotPool(workDir, 2)
	require.NoError(t, err)

	marker := filepath.Join(pool.Slot(0).Dir, "mips.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	require.NoError(t, pool.Cleanup())
	for i := 0; i < 2; i++ {
		_, err := os.Stat(pool.Slot(i).Dir)
		assert.True(t, os.IsNotExist(err))
	}
}
