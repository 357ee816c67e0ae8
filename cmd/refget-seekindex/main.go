// Command refget-seekindex builds the seekable-zstd container file and its
// companion .seekidx side file from a plain sequence file, for use as test
// fixtures or for converting locally-held sequence data into the layout
// container.Open expects. It never runs as part of the request-serving
// path.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ebi-refget/refget-server/container"
)

func main() {
	app := &cli.App{
		Name:        "refget-seekindex",
		Usage:       "build a seekable zstd container + seek table from a plain sequence file",
		ArgsUsage:   "<plain-sequence-path> <output-path>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "frame-size",
				Usage: "uncompressed size of each independent zstd frame",
				Value: container.DefaultFrameSize,
			},
		},
		Action: func(c *cli.Context) error {
			plainPath := c.Args().Get(0)
			outPath := c.Args().Get(1)
			if plainPath == "" || outPath == "" {
				return cli.Exit("usage: refget-seekindex <plain-sequence-path> <output-path>", 1)
			}

			plain, err := os.ReadFile(plainPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("reading %q: %s", plainPath, err), 1)
			}

			dataFile, err := os.Create(outPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("creating %q: %s", outPath, err), 1)
			}
			defer dataFile.Close()

			seekFile, err := os.Create(outPath + ".seekidx")
			if err != nil {
				return cli.Exit(fmt.Sprintf("creating %q.seekidx: %s", outPath, err), 1)
			}
			defer seekFile.Close()

			if err := container.Build(dataFile, seekFile, plain, c.Int("frame-size")); err != nil {
				return cli.Exit(fmt.Sprintf("building container: %s", err), 1)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
