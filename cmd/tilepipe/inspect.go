package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/aidangoettsch/go-tilepipe/source"
	"github.com/aidangoettsch/go-tilepipe/tile"
)

type inspectCmd struct {
	inputPath string
}

func (c *inspectCmd) Name() string     { return "inspect" }
func (c *inspectCmd) Synopsis() string { return "print metadata and tile counts of an MBTiles archive" }
func (c *inspectCmd) Usage() string {
	return "tilepipe inspect -i <path.mbtiles>\n"
}
func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input MBTiles path")
}

func (c *inspectCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	mb, err := source.OpenMBTiles(c.inputPath)
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}
	defer mb.Close()

	metadata, err := mb.Metadata()
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}
	names := make([]string, 0, len(metadata))
	for name := range metadata {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %s\n", name, metadata[name])
	}

	perZoom := map[uint8]int{}
	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	err = mb.VisitTiles(func(coords tile.Coords, _ []byte) error {
		perZoom[coords.Z]++
		bar.Add(1)
		return nil
	})
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}

	zooms := make([]int, 0, len(perZoom))
	for z := range perZoom {
		zooms = append(zooms, int(z))
	}
	sort.Ints(zooms)
	for _, z := range zooms {
		fmt.Printf("zoom %2d: %d tiles\n", z, perZoom[uint8(z)])
	}

	return subcommands.ExitSuccess
}
