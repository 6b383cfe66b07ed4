package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/1siamBot/unitcore/engine/config"
	"github.com/1siamBot/unitcore/engine/stats"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored run reports",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the metrics of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(configPath, config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configPath)
		return nil
	},
}

var (
	runsDB    string
	runsLimit int
)

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDB, "db", "unitsim.db", "run report database")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := stats.NewStore(runsDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTICKS\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Scenario, r.Ticks, r.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := stats.NewStore(runsDB)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(args[0])
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render(run.Scenario))
	fmt.Printf("ID:      %s\n", run.ID)
	fmt.Printf("Ticks:   %d\n", run.Ticks)
	fmt.Printf("Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if !run.EndedAt.IsZero() {
		fmt.Printf("Ended:   %s\n", run.EndedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Println(metricTable(run.Metrics))
	return nil
}
