package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-grib/grib"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Probe a byte stream for GRIB message headers",
	Long: `Scan an arbitrary file, such as a partial range download, for GRIB
message headers. For each header found, print its offset and declared
length, then continue after the declared extent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		log.Debug().Int("bytes", len(buf)).Str("file", args[0]).Msg("buffer loaded")

		var base int64
		count := 0
		for {
			offset, length, ok := grib.FindMessage(buf[base:])
			if !ok {
				break
			}
			abs := base + offset
			complete := abs+length <= int64(len(buf))
			fmt.Printf("message %d: offset=%d length=%d complete=%v\n", count+1, abs, length, complete)
			count++
			if !complete {
				break
			}
			base = abs + length
		}
		if count == 0 {
			fmt.Println("no GRIB headers found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
