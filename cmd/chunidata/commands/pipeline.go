package commands

import (
	"os"

	"chunidata-backend/services/pipeline"
	"chunidata-backend/services/songdb"

	"github.com/spf13/cobra"
)

var (
	startStage  *int
	interactive *bool
)

func init() {
	startStage = pipelineCmd.Flags().Int("start-stage", 1, "Stage to start from, earlier stages are assumed complete.")
	interactive = pipelineCmd.Flags().Bool("interactive", false, "Prompt on the terminal for constants the run cannot derive.")
	rootCmd.AddCommand(pipelineCmd)
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [--start-stage <1|2|3>] [--interactive]",
	Short: "Runs the scrape/reconcile/postprocess pipeline, resuming where the last run stopped.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			fatal("failed to read config", err)
		}

		store, err := pipeline.NewFsStore(cfg.Pipeline.WorkDir)
		if err != nil {
			fatal("failed to open stage marker store", err)
		}

		var resolver songdb.ConstantResolver = songdb.DeferResolver{}
		if *interactive {
			resolver = songdb.NewPromptResolver(os.Stdin, os.Stdout)
		}

		p := pipeline.New(cfg.Pipeline, store, resolver)
		err = p.Run(cmd.Context(), pipeline.Stage(*startStage))
		if err != nil {
			fatal("pipeline failed", err)
		}
	},
}
