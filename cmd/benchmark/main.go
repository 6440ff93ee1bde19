package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cast"
	"github.com/urfave/cli/v3"
	"github.com/valyala/quicktemplate"
	"golang.org/x/sync/errgroup"

	"github.com/delaneyj/customelement/codec"
	"github.com/delaneyj/customelement/element"
	"github.com/delaneyj/customelement/host"
	"github.com/delaneyj/customelement/render"
)

const (
	sizesKey    = "sizes"
	writesKey   = "writes"
	itersKey    = "iters"
	loopsKey    = "loops"
	intervalKey = "interval"
	profileKey  = "profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure batched update passes of custom elements",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  sizesKey,
				Usage: "Comma separated element counts",
				Value: "1,10,100,1000",
			},
			&cli.StringFlag{
				Name:  writesKey,
				Usage: "Comma separated property writes per element per frame",
				Value: "1,10,100",
			},
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Frames per benchmark",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  loopsKey,
				Usage: "Event loops to run concurrently",
				Value: 4,
			},
			&cli.DurationFlag{
				Name:  intervalKey,
				Usage: "Frame interval of each event loop",
				Value: time.Millisecond,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
				Value: "default.pgo",
			},
		},
		Action: benchmark,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func benchmark(ctx context.Context, cmd *cli.Command) error {
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

	sizes, err := parseCounts(cmd.String(sizesKey))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", sizesKey, err)
	}
	writes, err := parseCounts(cmd.String(writesKey))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", writesKey, err)
	}
	iters := int(cmd.Int(itersKey))

	log.Printf("warming up")
	if err := benchmarkFrames(sizes, writes, iters, false); err != nil {
		return err
	}
	if err := benchmarkFrames(sizes, writes, iters, true); err != nil {
		return err
	}
	return benchmarkLoops(ctx, int(cmd.Int(loopsKey)), sizes, iters, cmd.Duration(intervalKey))
}

func parseCounts(s string) ([]int, error) {
	return cast.ToIntSliceE(strings.Split(s, ","))
}

var counterDefinition = func() *element.Definition {
	def := element.Define("x-counter", nil)
	def.MustDeclare("count", element.WithConverter(codec.Integer), element.WithInitial(0))
	def.MustDeclare("label", element.WithInitial("counter"))
	return def
}()

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type counter struct {
	*element.Element
	count element.Property[int]
	label element.Property[string]
}

func newCounter(frames host.Frames, renderer element.Renderer) *counter {
	c := &counter{}
	c.Element = element.New(counterDefinition, host.NewNode("x-counter"), frames,
		element.WithOwner(c),
		element.WithRenderer(renderer),
		element.WithLogger(quiet),
		element.WithOnError(func(from *element.Element, err error) {
			log.Panic(err)
		}),
	)
	c.count = element.Bind[int](c.Element, "count")
	c.label = element.Bind[string](c.Element, "label")
	return c
}

func (c *counter) Template() any {
	return render.TemplateFunc(func(qw *quicktemplate.Writer) {
		qw.N().S("<span>")
		qw.E().S(c.label.Get())
		qw.N().S(": ")
		qw.N().D(c.count.Get())
		qw.N().S("</span>")
	})
}

func addOne(n int) int { return n + 1 }

// benchmarkFrames times one frame after every element took its writes. Each
// frame must run exactly one pass per element no matter how many writes.
func benchmarkFrames(sizes, writes []int, iters int, shouldRender bool) error {
	tbl := table.NewWriter()
	tbl.SetTitle("Batched update passes")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "writes", "passes"})

	for _, n := range sizes {
		for _, w := range writes {
			frames := host.NewManualFrames()
			renderer := render.NewHTML()
			counters := make([]*counter, n)
			for i := range counters {
				counters[i] = newCounter(frames, renderer)
			}

			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			for i := 0; i < iters; i++ {
				start := time.Now()
				for _, c := range counters {
					for j := 0; j < w; j++ {
						if err := c.count.Update(addOne); err != nil {
							return err
						}
					}
				}
				frames.Flush()
				tach.AddTime(time.Since(start))
			}

			passes := 0
			for _, c := range counters {
				if c.Passes() != iters {
					return fmt.Errorf("%d elements * %d writes: element ran %d passes in %d frames", n, w, c.Passes(), iters)
				}
				passes += c.Passes()
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("coalesce: %d * %d", n, w),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
					humanize.Comma(int64(n * w * iters)),
					humanize.Comma(int64(passes)),
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
	return nil
}

// benchmarkLoops runs one event loop per worker and times each frame from
// the first write until every element finished its pass.
func benchmarkLoops(ctx context.Context, loops int, sizes []int, iters int, interval time.Duration) error {
	tbl := table.NewWriter()
	tbl.SetTitle("Event loops")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "frames"})

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for l := 0; l < loops; l++ {
		for _, n := range sizes {
			l, n := l, n
			g.Go(func() error {
				loop := host.NewLoop(host.WithInterval(interval), host.WithLoopLogger(quiet))
				defer loop.Close()
				go loop.Run(gctx)

				var counters []*counter
				err := loop.Do(gctx, func() error {
					renderer := render.NewHTML()
					for i := 0; i < n; i++ {
						counters = append(counters, newCounter(loop, renderer))
					}
					return nil
				})
				if err != nil {
					return err
				}

				tach := tachymeter.New(&tachymeter.Config{Size: iters})
				updates := make([]*element.Update, 0, n)
				for i := 0; i < iters; i++ {
					updates = updates[:0]
					start := time.Now()
					err := loop.Do(gctx, func() error {
						for _, c := range counters {
							if err := c.count.Update(addOne); err != nil {
								return err
							}
							updates = append(updates, c.RequestUpdateAll())
						}
						return nil
					})
					if err != nil {
						return err
					}
					for _, u := range updates {
						if _, err := u.Wait(gctx); err != nil {
							return err
						}
					}
					tach.AddTime(time.Since(start))
				}

				calc := tach.Calc()
				mu.Lock()
				defer mu.Unlock()
				tbl.AppendRow(table.Row{
					fmt.Sprintf("loop %d: %d elements", l, n),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
					humanize.Comma(int64(loop.Ticks())),
				})
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tbl.SortBy([]table.SortBy{{Name: "benchmark", Mode: table.Asc}})
	tbl.Render()
	return nil
}
