package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-grib/grib"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file.grib2>",
	Short: "Print value statistics per message",
	Long: `Print the value count, missing count, minimum, maximum and mean of
every message in a GRIB file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
			vals, err := msg.Values()
			if err != nil {
				return err
			}

			min, max := math.Inf(1), math.Inf(-1)
			var sum float64
			var missing int
			for _, v := range vals {
				if math.IsNaN(v) {
					missing++
					continue
				}
				min = math.Min(min, v)
				max = math.Max(max, v)
				sum += v
			}
			present := len(vals) - missing
			mean := math.NaN()
			if present > 0 {
				mean = sum / float64(present)
			}
			fmt.Printf("message %d: %s values=%d missing=%d min=%g max=%g mean=%g\n",
				i+1, name, len(vals), missing, min, max, mean)
			msg.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
