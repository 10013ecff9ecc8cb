package schedule

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oNya685/SysYTest/internal/domain"
)

// SlotPool is a fixed set of isolated slot directories, one per worker
// goroutine. Directories are created up front and reused for the whole
// session; successive occupants of a slot overwrite each other's files
// rather than cleaning up.
type SlotPool struct {
	slots []domain.WorkerSlot
}

// NewSlotPool creates count slot directories under workDir.
func NewSlotPool(workDir string, count int) (*SlotPool, error) {
	if count <= 0 {
		return nil, fmt.Errorf("slot count must be positive, got %d", count)
	}
	slots := make([]domain.WorkerSlot, count)
	for i := 0; i < count; i++ {
		dir := filepath.Join(workDir, fmt.Sprintf("worker_%d", i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating slot dir %s: %w", dir, err)
		}
		slots[i] = domain.WorkerSlot{Index: i, Dir: dir}
	}
	return &SlotPool{slots: slots}, nil
}

// Slot returns the slot with the given index.
func (p *SlotPool) Slot(i int) domain.WorkerSlot {
	return p.slots[i]
}

// Size returns the number of slots, which bounds suite concurrency.
func (p *SlotPool) Size() int {
	return len(p.slots)
}

// Cleanup removes every slot directory. Call between sessions, never while
// a suite is running.
func (p *SlotPool) Cleanup() error {
	for _, slot := range p.slots {
		if err := os.RemoveAll(slot.Dir); err != nil {
			return fmt.Errorf("removing slot dir %s: %w", slot.Dir, err)
		}
	}
	return nil
}
