// Command vsimdemo scripts vsim through a handful of scenarios drawn
// straight from spec.md §8: a slow computation, a race against a
// timeout, the any/all combinators, a detached background computation,
// and a lazily started one. Each scenario runs in its own fresh driver
// so they can't interfere with each other's virtual clock.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/AnatoleLucet/vsim"
)

func main() {
	cmd := &cli.Command{
		Name:  "vsimdemo",
		Usage: "run vsim's virtual-time scheduler through scripted scenarios",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scenario",
				Usage: "scenario to run: slow-add, race, combinator, detached, lazy-start, all",
				Value: "all",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type scenarioResult struct {
	outcome string
	note    string
	start   time.Time
	end     time.Time
}

var scenarios = map[string]func() scenarioResult{
	"slow-add":   slowAddScenario,
	"race":       raceScenario,
	"combinator": combinatorScenario,
	"detached":   detachedScenario,
	"lazy-start": lazyStartScenario,
}

var scenarioOrder = []string{"slow-add", "race", "combinator", "detached", "lazy-start"}

func run(ctx context.Context, cmd *cli.Command) error {
	choice := cmd.String("scenario")

	names := scenarioOrder
	if choice != "all" {
		if _, ok := scenarios[choice]; !ok {
			return fmt.Errorf("vsimdemo: unknown scenario %q", choice)
		}
		names = []string{choice}
	}

	resultsTbl := table.NewWriter()
	resultsTbl.SetTitle("vsim scenario results")
	resultsTbl.SetOutputMirror(os.Stdout)
	resultsTbl.AppendHeader(table.Row{"scenario", "outcome", "virtual ns elapsed"})

	notesTbl := tablewriter.NewWriter(os.Stdout)
	notesTbl.SetHeader([]string{"scenario", "what it demonstrates"})

	for _, name := range names {
		vsim.Reset()
		result := scenarios[name]()
		vsim.Clear()

		elapsed := humanize.Comma(int64(result.end.Sub(result.start)))
		resultsTbl.AppendRow(table.Row{name, result.outcome, elapsed})
		notesTbl.Append([]string{name, result.note})
	}

	resultsTbl.Render()
	notesTbl.Render()
	return nil
}

// slowAddScenario suspends on a virtual timer before producing its sum
// (spec.md §8, "suspendable computation").
func slowAddScenario() scenarioResult {
	start := vsim.Now()

	c := vsim.Go(func(self *vsim.Computation[int]) (int, error) {
		if err := self.Await(vsim.After(50 * time.Millisecond)); err != nil {
			return 0, err
		}
		return 2 + 3, nil
	})

	vsim.Loop()

	v, err := c.Result()
	return scenarioResult{
		outcome: fmt.Sprintf("sum=%d err=%v", v, err),
		note:    "suspends on a 50ms virtual timer before producing its value",
		start:   start,
		end:     vsim.Now(),
	}
}

// raceScenario pits a slow computation against a faster timeout, which
// wins without forcibly terminating the loser (spec.md §4.5, §8).
func raceScenario() scenarioResult {
	start := vsim.Now()

	slow := vsim.Go(func(self *vsim.Computation[int]) (int, error) {
		if err := self.Await(vsim.After(200 * time.Millisecond)); err != nil {
			return 0, err
		}
		return 42, nil
	})

	raced := vsim.Race(slow, vsim.After(50*time.Millisecond))
	vsim.Loop()

	opt, err := raced.Result()
	return scenarioResult{
		outcome: fmt.Sprintf("some=%v value=%d err=%v", opt.Some, opt.Value, err),
		note:    "a 50ms timeout wins the race against a 200ms computation",
		start:   start,
		end:     vsim.Now(),
	}
}

// combinatorScenario shows any() resolving as soon as its quickest
// member fires, while all() waits for the slowest (spec.md §4.3, §8).
func combinatorScenario() scenarioResult {
	start := vsim.Now()

	anyDone := vsim.Go(func(self *vsim.Computation[struct{}]) (struct{}, error) {
		members := vsim.Any(
			vsim.After(10*time.Millisecond),
			vsim.After(30*time.Millisecond),
			vsim.After(20*time.Millisecond),
		)
		return struct{}{}, self.Await(members)
	})

	allDone := vsim.Go(func(self *vsim.Computation[struct{}]) (struct{}, error) {
		members := vsim.All(
			vsim.After(10*time.Millisecond),
			vsim.After(30*time.Millisecond),
			vsim.After(20*time.Millisecond),
		)
		return struct{}{}, self.Await(members)
	})

	vsim.Loop()

	return scenarioResult{
		outcome: fmt.Sprintf("any done=%v all done=%v", anyDone.Done(), allDone.Done()),
		note:    "any() resolves at the 10ms mark, all() waits until the 30ms mark",
		start:   start,
		end:     vsim.Now(),
	}
}

// detachedScenario runs a printer computation that ticks three times
// and is never awaited; Detach lets it self-release on exit instead of
// leaking (spec.md §4.4 "Detachment", §8).
func detachedScenario() scenarioResult {
	start := vsim.Now()

	printer := vsim.Go(func(self *vsim.Computation[struct{}]) (struct{}, error) {
		for i := 0; i < 3; i++ {
			if err := self.Await(vsim.After(10 * time.Millisecond)); err != nil {
				return struct{}{}, err
			}
			log.Printf("vsimdemo: detached printer tick %d at %s", i, vsim.Now().Format(time.RFC3339Nano))
		}
		return struct{}{}, nil
	})
	printer.Detach()

	vsim.Loop()

	return scenarioResult{
		outcome: fmt.Sprintf("done=%v", printer.Done()),
		note:    "runs to completion unobserved, self-releasing its storage on exit",
		start:   start,
		end:     vsim.Now(),
	}
}

// lazyStartScenario shows that a computation suspended on its own
// interest signal never progresses until something expresses interest,
// here via Start (spec.md §3, §4.4 "Lazy start", §8).
func lazyStartScenario() scenarioResult {
	start := vsim.Now()

	lazy := vsim.Go(func(self *vsim.Computation[int]) (int, error) {
		if err := self.AwaitInterest(); err != nil {
			return 0, err
		}
		if err := self.Await(vsim.After(5 * time.Millisecond)); err != nil {
			return 0, err
		}
		return 7, nil
	})

	vsim.Loop()
	doneBeforeInterest := lazy.Done()

	lazy.Start()
	vsim.Loop()

	return scenarioResult{
		outcome: fmt.Sprintf("done-before-interest=%v done-after-interest=%v", doneBeforeInterest, lazy.Done()),
		note:    "stays suspended on AwaitInterest until Start expresses interest",
		start:   start,
		end:     vsim.Now(),
	}
}
