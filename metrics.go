package alloc

// SizeInUse returns the number of bytes handed out across all blocks,
// including alignment padding.
func (a *Arena) SizeInUse() int {
	sum := 0
	for _, b := range a.blocks {
		sum += int(b.current)
	}
	return sum
}

// NumBlocks returns the number of blocks obtained from the parent.
func (a *Arena) NumBlocks() int {
	return len(a.blocks)
}

// Capacity returns the total size of all blocks in bytes.
func (a *Arena) Capacity() int {
	sum := 0
	for _, b := range a.blocks {
		sum += int(b.layout.Size)
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	return utilization(a.SizeInUse(), a.Capacity())
}

// BlockSize returns the size of the first block.
func (a *Arena) BlockSize() int {
	return int(a.blockSize)
}

// LastBlockSize returns the size of the most recently added block, or 0.
func (a *Arena) LastBlockSize() int {
	return int(a.lastSize)
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:     a.SizeInUse(),
		Capacity:      a.Capacity(),
		NumBlocks:     a.NumBlocks(),
		BlockSize:     a.BlockSize(),
		LastBlockSize: a.LastBlockSize(),
		Utilization:   a.Utilization(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse     int     // Bytes currently allocated
	Capacity      int     // Total capacity in bytes
	NumBlocks     int     // Number of blocks
	BlockSize     int     // First block size
	LastBlockSize int     // Most recent block size
	Utilization   float64 // Ratio of used to total capacity (0.0-1.0)
}

// Used returns the number of bytes consumed, including padding.
func (a *Linear) Used() int {
	return int(a.cursor)
}

// Capacity returns the size of the buffer.
func (a *Linear) Capacity() int {
	return int(a.end)
}

// Metrics returns a snapshot of linear allocator statistics.
func (a *Linear) Metrics() LinearMetrics {
	return LinearMetrics{
		Used:        a.Used(),
		Capacity:    a.Capacity(),
		Utilization: utilization(a.Used(), a.Capacity()),
	}
}

// LinearMetrics contains statistical information about a linear allocator.
type LinearMetrics struct {
	Used        int
	Capacity    int
	Utilization float64
}

func utilization(used, capacity int) float64 {
	if capacity == 0 {
		return 0
	}
	return float64(used) / float64(capacity)
}
