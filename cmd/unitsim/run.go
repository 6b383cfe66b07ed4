package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/1siamBot/unitcore/engine/network"
	"github.com/1siamBot/unitcore/engine/sim"
	"github.com/1siamBot/unitcore/engine/stats"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demo match headless and print a report",
	RunE:  runDemo,
}

var (
	runTicks  int
	runReplay string
	runDB     string
)

func init() {
	runCmd.Flags().IntVar(&runTicks, "ticks", 1200, "ticks to simulate")
	runCmd.Flags().StringVar(&runReplay, "replay", "", "play orders from a replay file instead of the built-in script")
	runCmd.Flags().StringVar(&runDB, "db", "", "store the run report in this SQLite database")
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc, err := sim.NewDemo(cfg)
	if err != nil {
		return err
	}
	s := sc.Sim

	scenario := "demo"
	if runReplay != "" {
		r, err := network.LoadReplay(runReplay)
		if err != nil {
			return err
		}
		r.Schedule(s.Lockstep)
		scenario = "replay:" + runReplay
		slog.Info("replay loaded", "orders", len(r.Orders), "last_tick", r.LastTick())
	} else {
		for _, o := range sc.ScriptedOrders() {
			s.Lockstep.Deliver(o)
		}
	}

	var store *stats.Store
	var run *stats.Run
	if runDB != "" {
		if store, err = stats.NewStore(runDB); err != nil {
			return err
		}
		defer store.Close()
		if run, err = store.StartRun(scenario); err != nil {
			return err
		}
	}

	start := time.Now()
	runErr := s.Run(ctx, runTicks)
	elapsed := time.Since(start)
	if runErr != nil {
		slog.Warn("run interrupted", "tick", s.World.TickCount, "err", runErr)
	}

	fmt.Println(report(s, elapsed))

	if store != nil {
		if err := store.FinishRun(run.ID, s.World.TickCount, s.Stats.Metrics()); err != nil {
			return err
		}
		fmt.Println(dimStyle.Render("stored run " + run.ID))
	}
	return nil
}
