package main

import (
	"fmt"

	"github.com/1siamBot/unitcore/engine/network"
	"github.com/1siamBot/unitcore/engine/sim"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record [file]",
	Short: "Write the demo's scripted orders to a replay file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecord,
}

func runRecord(cmd *cobra.Command, args []string) error {
	sc, err := sim.NewDemo(cfg)
	if err != nil {
		return err
	}
	rec, err := network.NewReplayRecorder(args[0])
	if err != nil {
		return err
	}
	orders := sc.ScriptedOrders()
	for _, o := range orders {
		if err := rec.Record(o); err != nil {
			rec.Close()
			return err
		}
	}
	if err := rec.Close(); err != nil {
		return err
	}
	fmt.Printf("Recorded %d orders to %s\n", len(orders), args[0])
	return nil
}
