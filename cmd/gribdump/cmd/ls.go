package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-grib/grib"
)

var lsCmd = &cobra.Command{
	Use:   "ls <file.grib2>",
	Short: "List messages with their ls-namespace keys",
	Long: `List every message in a GRIB file, one line per message, with the
keys of the requested namespace.

Example:
  gribdump ls forecast.grib2
  gribdump ls --namespace geography forecast.grib2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		namespace, _ := cmd.Flags().GetString("namespace")

		r, err := grib.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		msgs, err := r.ReadAll()
		if err != nil {
			return err
		}
		log.Debug().Int("messages", len(msgs)).Str("file", args[0]).Msg("container decoded")

		for i, msg := range msgs {
			fmt.Printf("message %d (%d bytes)\n", i+1, msg.Length())
			it := msg.Keys(grib.Namespace(namespace))
			for it.Next() {
				fmt.Printf("  %s = %s\n", it.Key(), it.Value())
			}
			if err := it.Err(); err != nil {
				return err
			}
			it.Close()
			msg.Close()
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().StringP("namespace", "n", "ls", "Key namespace to print")
	rootCmd.AddCommand(lsCmd)
}
