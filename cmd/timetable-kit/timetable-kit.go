package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/neroden/timetable-kit/pkg/schedule"
	"github.com/neroden/timetable-kit/pkg/timetable"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("TIMETABLE_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TIMETABLE_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "timetable-kit",
		Description: "Generate printable timetables from GTFS schedules and tt-specs",

		Commands: []*cli.Command{
			timetable.RegisterCLI(),
			schedule.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
