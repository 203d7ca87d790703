package main

import (
	"errors"
	"fmt"
	"io"
	"time"
	"unsafe"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pavanmanishd/alloc"
)

var (
	runStrategy   string
	runSize       int
	runAlign      int
	runCount      int
	runResetEvery int
	runBlockSize  int
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVarP(&runStrategy, "strategy", "s", "arena", "Allocation strategy (see 'allocbench strategies')")
	cmd.Flags().IntVar(&runSize, "size", 64, "Bytes per allocation")
	cmd.Flags().IntVar(&runAlign, "align", 8, "Alignment of each allocation (power of two)")
	cmd.Flags().IntVarP(&runCount, "count", "n", 10000, "Number of allocations")
	cmd.Flags().IntVar(&runResetEvery, "reset-every", 1000, "Release everything after this many allocations (0 = only at the end)")
	cmd.Flags().IntVar(&runBlockSize, "block-size", 1<<20, "First arena block size, or the linear buffer size")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run an allocation workload",
		Long: `The run command allocates --count blocks of --size bytes from the chosen
strategy. Every --reset-every allocations the live blocks are released,
with Reset for arena and linear, and one deallocation per block otherwise.

Example:
  allocbench run --strategy arena --size 128 --count 100000
  allocbench run -s linear --block-size 65536 --reset-every 0
  allocbench run -s legacy --trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := workload{
				strategy:   runStrategy,
				size:       runSize,
				align:      runAlign,
				count:      runCount,
				resetEvery: runResetEvery,
				blockSize:  runBlockSize,
			}
			var opts []alloc.Option
			if trace {
				opts = append(opts, alloc.WithLayers(alloc.NewLogLayer(nil)))
			}
			res, err := runWorkload(w, opts...)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

type workload struct {
	strategy   string
	size       int
	align      int
	count      int
	resetEvery int
	blockSize  int
}

func (w workload) validate() error {
	if w.size <= 0 {
		return fmt.Errorf("size must be positive, got %d", w.size)
	}
	if w.count < 0 || w.resetEvery < 0 {
		return errors.New("count and reset-every must not be negative")
	}
	if w.blockSize <= 0 {
		return fmt.Errorf("block-size must be positive, got %d", w.blockSize)
	}
	if w.align <= 0 || !w.layout().Valid() {
		return fmt.Errorf("align must be a power of two, got %d", w.align)
	}
	return nil
}

func (w workload) layout() alloc.Layout {
	return alloc.Layout{Size: uintptr(w.size), Align: uintptr(w.align)}
}

// Result summarizes one workload run.
type Result struct {
	Strategy    string        `json:"strategy"`
	Allocations int           `json:"allocations"`
	Failures    int           `json:"failures"`
	Bytes       int64         `json:"bytes"`
	Releases    int           `json:"releases"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Metrics     any           `json:"metrics"`
}

func runWorkload(w workload, opts ...alloc.Option) (*Result, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	s, err := lookupStrategy(w.strategy)
	if err != nil {
		return nil, err
	}
	t, err := s.build(w, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s allocator: %w", w.strategy, err)
	}
	defer t.release()

	log := alloc.Logger().With(zap.String("strategy", w.strategy))
	res := &Result{Strategy: w.strategy}
	live := make([]unsafe.Pointer, 0, max(w.resetEvery, 1))
	l := w.layout()

	flush := func() {
		switch {
		case t.legacy != nil:
			for _, p := range live {
				t.legacy.LegacyDealloc(p)
			}
		default:
			if r, ok := alloc.AsResettable(t.layout); ok {
				r.Reset()
				break
			}
			for _, p := range live {
				t.layout.Dealloc(l, p)
			}
		}
		live = live[:0]
		res.Releases++
	}

	start := time.Now()
	for i := 0; i < w.count; i++ {
		var p unsafe.Pointer
		var err error
		if t.legacy != nil {
			p, err = t.legacy.LegacyAlloc(l.Size)
		} else {
			p, err = t.layout.Alloc(l)
		}
		if err != nil {
			res.Failures++
			log.Debug("allocation failed", zap.Int("index", i), zap.Error(err))
			continue
		}
		// Touch both ends so page-backed memory is actually faulted in.
		b := unsafe.Slice((*byte)(p), l.Size)
		b[0], b[len(b)-1] = byte(i), byte(i)

		live = append(live, p)
		res.Allocations++
		res.Bytes += int64(l.Size)
		if w.resetEvery > 0 && len(live) >= w.resetEvery {
			flush()
		}
	}
	if len(live) > 0 {
		flush()
	}
	res.Elapsed = time.Since(start)
	res.Metrics = t.metrics()

	log.Info("workload finished",
		zap.Int("allocations", res.Allocations),
		zap.Int("failures", res.Failures),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func printResult(w io.Writer, r *Result) {
	fmt.Fprintf(w, "Strategy:    %s\n", r.Strategy)
	fmt.Fprintf(w, "Allocations: %d\n", r.Allocations)
	fmt.Fprintf(w, "Failures:    %d\n", r.Failures)
	fmt.Fprintf(w, "Bytes:       %d\n", r.Bytes)
	fmt.Fprintf(w, "Releases:    %d\n", r.Releases)
	fmt.Fprintf(w, "Elapsed:     %s\n", r.Elapsed)
	if r.Allocations > 0 {
		fmt.Fprintf(w, "Per alloc:   %s\n", r.Elapsed/time.Duration(r.Allocations))
	}
	fmt.Fprintf(w, "Metrics:     %+v\n", r.Metrics)
}
