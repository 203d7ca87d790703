package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/alloc"
)

// target is one allocator under test. Exactly one of layout and legacy is
// set.
type target struct {
	layout  alloc.Allocator
	legacy  alloc.Legacy
	release func()
	metrics func() any
}

type strategy struct {
	desc  string
	build func(w workload, opts []alloc.Option) (*target, error)
}

var strategies = map[string]strategy{
	"arena": {
		desc: "growable bump allocator over the system allocator",
		build: func(w workload, opts []alloc.Option) (*target, error) {
			a := alloc.NewArena(alloc.NewSystem(opts...),
				append(opts, alloc.WithInitialBlockSize(uintptr(w.blockSize)))...)
			return &target{layout: a, release: a.Release, metrics: func() any { return a.Metrics() }}, nil
		},
	},
	"linear": {
		desc: "fixed buffer bump allocator; fails once the buffer is full",
		build: func(w workload, opts []alloc.Option) (*target, error) {
			a, err := alloc.NewLinearFrom(alloc.NewPage(opts...), uintptr(w.blockSize), opts...)
			if err != nil {
				return nil, err
			}
			return &target{layout: a, release: a.Release, metrics: func() any { return a.Metrics() }}, nil
		},
	},
	"page": {
		desc: "one anonymous mapping per request",
		build: func(w workload, opts []alloc.Option) (*target, error) {
			a := alloc.NewPage(opts...)
			return &target{layout: a, release: func() {}, metrics: func() any {
				return struct{ PageSize uintptr }{a.PageSize()}
			}}, nil
		},
	},
	"system": {
		desc: "general-purpose allocator on the Go heap",
		build: func(w workload, opts []alloc.Option) (*target, error) {
			a := alloc.NewSystem(opts...)
			return &target{layout: a, release: func() {}, metrics: func() any {
				return struct{ Live int }{a.Live()}
			}}, nil
		},
	},
	"legacy": {
		desc: "size-only interface over the system allocator",
		build: func(w workload, opts []alloc.Option) (*target, error) {
			inner := alloc.NewSystem(opts...)
			a := alloc.NewLegacyAdapter(inner, opts...)
			return &target{legacy: a, release: func() {}, metrics: func() any {
				return struct{ Live int }{inner.Live()}
			}}, nil
		},
	},
}

func strategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupStrategy(name string) (strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return strategy{}, fmt.Errorf("unknown strategy %q (want one of %s)",
			name, strings.Join(strategyNames(), ", "))
	}
	return s, nil
}

func init() {
	rootCmd.AddCommand(newStrategiesCmd())
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List available allocation strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				out := make(map[string]string, len(strategies))
				for name, s := range strategies {
					out[name] = s.desc
				}
				return printJSON(cmd.OutOrStdout(), out)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range strategyNames() {
				fmt.Fprintf(tw, "%s\t%s\n", name, strategies[name].desc)
			}
			return tw.Flush()
		},
	}
}
