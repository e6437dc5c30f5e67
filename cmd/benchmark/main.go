package main

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/reactivestate/reactive"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
	graphKey   = "graph"
	verboseKey = "verbose"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Time write propagation through reactive objects",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Writes timed per graph shape",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
				Value: "default.pgo",
			},
			&cli.BoolFlag{
				Name:  graphKey,
				Usage: "Print the dependency graph of the smallest shape",
			},
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log runtime internals",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	if cmd.Bool(verboseKey) {
		log = log.Level(zerolog.TraceLevel)
	}

	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Uint(itersKey))
	start := time.Now()
	log.Info().Int("iters", iters).Msg("benchmark started")
	defer func() {
		log.Info().Dur("took", time.Since(start)).Msg("benchmark finished")
	}()

	if cmd.Bool(graphKey) {
		rt, _, err := buildChains(log, 2, 2)
		if err != nil {
			return err
		}
		fmt.Print(rt.Graph())
	}

	if err := benchmarkPropagate(log, iters); err != nil {
		return err
	}
	return benchmarkBatch(log, iters)
}

// buildChains makes w chains of h computed properties hanging off one source
// object, each chain observed by an effect at its end.
func buildChains(log zerolog.Logger, w, h int) (*reactive.Runtime, *reactive.Object, error) {
	rt := reactive.New(reactive.WithLogger(log))
	src := reactive.NewObject(rt, map[string]any{"v": 1})
	for i := 0; i < w; i++ {
		prev := src
		for j := 0; j < h; j++ {
			node := reactive.NewObject(rt, nil)
			from := prev
			if _, err := reactive.Computed(node, "v", func() (any, error) {
				return from.Get("v").(int) + 1, nil
			}); err != nil {
				return nil, nil, err
			}
			prev = node
		}

		last := prev
		if _, err := reactive.Effect(rt, func() error {
			last.Get("v")
			return nil
		}, reactive.WithName(fmt.Sprintf("leaf%d", i))); err != nil {
			return nil, nil, err
		}
	}
	return rt, src, nil
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "runs"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter, runs uint64) {
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
		runs,
	})
}

func benchmarkPropagate(log zerolog.Logger, iters int) error {
	tbl := newTable("Propagate")
	for _, w := range ww {
		for _, h := range hh {
			log.Debug().Int("w", w).Int("h", h).Msg("propagate")
			rt, src, err := buildChains(log, w, h)
			if err != nil {
				return err
			}

			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			before := rt.Stats().Runs
			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Set("v", reactive.Peek(src, "v").(int)+1)
				tach.AddTime(time.Since(start))
			}
			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach, rt.Stats().Runs-before)
		}
	}
	tbl.Render()
	return nil
}

// benchmarkBatch writes every key of an object once per iteration, batched,
// with one effect reading all of them.
func benchmarkBatch(log zerolog.Logger, iters int) error {
	tbl := newTable("Batch")
	for _, n := range []int{1, 10, 100, 1_000} {
		log.Debug().Int("keys", n).Msg("batch")
		rt := reactive.New(reactive.WithLogger(log))
		raw := make(map[string]any, n)
		keys := make([]string, n)
		for i := range keys {
			keys[i] = fmt.Sprintf("k%d", i)
			raw[keys[i]] = 0
		}
		s := reactive.NewObject(rt, raw)
		if _, err := reactive.Effect(rt, func() error {
			for _, k := range keys {
				s.Get(k)
			}
			return nil
		}); err != nil {
			return err
		}

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		before := rt.Stats().Runs
		for i := 0; i < iters; i++ {
			start := time.Now()
			err := rt.Batch(func() error {
				for _, k := range keys {
					s.Set(k, i+1)
				}
				return nil
			})
			tach.AddTime(time.Since(start))
			if err != nil {
				return err
			}
		}
		appendCalc(tbl, fmt.Sprintf("batch: %d keys", n), tach, rt.Stats().Runs-before)
	}
	tbl.Render()
	return nil
}
