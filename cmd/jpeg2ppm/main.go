// Command jpeg2ppm decodes a baseline JPEG file and writes it out as a
// binary PPM, exercising the jpeg package as an external collaborator
// would: Decode, then hand the raster to a separate writer.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	jpeg "github.com/sdkawata/jpeg-parser2"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		outPath string
		alpha   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "jpeg2ppm <input.jpg>",
		Short: "Decode a baseline sequential JPEG and write it out as PPM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			log.SetOutput(os.Stderr)
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			} else {
				log.SetLevel(logrus.WarnLevel)
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			img, err := jpeg.Decode(in, jpeg.Options{EmitAlpha: alpha, Logger: log})
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writePPM(out, img)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default: stdout)")
	cmd.Flags().BoolVarP(&alpha, "alpha", "a", false, "emit an RGBA raster internally (alpha dropped in PPM output)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log decode progress at debug level")

	return cmd
}
