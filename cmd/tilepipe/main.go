package main

import (
	"context"
	"flag"
	"os"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/subcommands"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&formatter.Formatter{
		HideKeys:        true,
		TimestampFormat: "15:04:05",
	})

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(&processCmd{}, "")
	subcommands.Register(&inspectCmd{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
