package main

import (
	"fmt"
	"os"

	"github.com/Vasu1712/scenyx-showtime/internal/show"
	"github.com/Vasu1712/scenyx-showtime/internal/showfile"
	"github.com/spf13/cobra"
)

var exampleOut string

var totalsCmd = &cobra.Command{
	Use:   "totals <show.yaml>",
	Short: "Print the running time of a show file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := showfile.Read(args[0])
		if err != nil {
			return err
		}
		sum := show.Summarize(s)
		out := cmd.OutOrStdout()
		for _, g := range show.Gaps(s) {
			logger.Sugar().Debugf("%s: %ds", g.Label, g.Duration)
		}
		for _, issue := range show.Audit(s) {
			logger.Sugar().Warnw("transition mismatch", "kind", issue.Kind, "from", issue.FromScene, "to", issue.ToScene, "transition", issue.TransitionID)
		}
		fmt.Fprintf(out, "Total Duration:       %s\n", sum.TotalText)
		fmt.Fprintf(out, "Scenes Duration:      %s\n", sum.ScenesText)
		fmt.Fprintf(out, "Transitions Duration: %s\n", sum.TransitionsText)
		return nil
	},
}

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Write the example show as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exampleOut == "" || exampleOut == "-" {
			return showfile.Encode(cmd.OutOrStdout(), show.ExampleShow())
		}
		if err := showfile.Write(exampleOut, show.ExampleShow()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", exampleOut)
		return nil
	},
}

func init() {
	exampleCmd.Flags().StringVarP(&exampleOut, "output", "o", "-", "file to write, - for stdout")
}
