package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-grib/grib"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.grib2>",
	Short: "Print grid values as lat/lon/value triples",
	Long: `Print every grid cell of each message as latitude, longitude and
value. Missing points print as NaN.

Example:
  gribdump dump --limit 10 forecast.grib2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		r, err := grib.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		msgs, err := r.ReadAll()
		if err != nil {
			return err
		}
		for i, msg := range msgs {
			name, _ := msg.Get("shortName")
			fmt.Printf("message %d: %s\n", i+1, name)

			it, err := msg.Coordinates()
			if err != nil {
				return err
			}
			printed := 0
			for it.Next() {
				if limit > 0 && printed >= limit {
					break
				}
				fmt.Printf("  %10.6f %11.6f %g\n", it.Latitude(), it.Longitude(), it.Value())
				printed++
			}
			it.Close()
			msg.Close()
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().IntP("limit", "l", 0, "Maximum cells to print per message (0 = all)")
	rootCmd.AddCommand(dumpCmd)
}
