package schedule

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/neroden/timetable-kit/pkg/gtfs"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Query a GTFS schedule",
		Subcommands: []*cli.Command{
			{
				Name:  "stations",
				Usage: "List the stations a train stops at, in order",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "gtfs",
						Usage:    "Path of the GTFS zip file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "train",
						Usage:    "Train number (trip_short_name)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "date",
						Usage:    "Reference date (YYYYMMDD)",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					resolver, err := loadResolver(c.String("gtfs"), c.String("date"))
					if err != nil {
						return err
					}

					trip, err := resolver.GetTrip(c.String("train"), c.String("date"), "")
					if err != nil {
						return err
					}
					for _, stopID := range resolver.StationsList(trip.ID) {
						fmt.Println(stopID)
					}
					return nil
				},
			},
			{
				Name:  "trains",
				Usage: "List the trains calling at a stop, or running between two stops",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "gtfs",
						Usage:    "Path of the GTFS zip file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "stop",
						Usage:    "Stop to list trains at",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Optional second stop; lists trains running from --stop to --to",
					},
					&cli.StringFlag{
						Name:     "date",
						Usage:    "Reference date (YYYYMMDD)",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					resolver, err := loadResolver(c.String("gtfs"), c.String("date"))
					if err != nil {
						return err
					}

					var tripIDs []string
					if to := c.String("to"); to != "" {
						tripIDs = resolver.TripsBetween(c.String("stop"), to)
					} else {
						tripIDs = resolver.TripsAt(c.String("stop"))
					}

					seen := map[string]bool{}
					var dupes []string
					for _, tripID := range tripIDs {
						tsn, err := resolver.TripShortName(tripID)
						if err != nil {
							return err
						}
						if seen[tsn] {
							dupes = append(dupes, tsn)
						}
						seen[tsn] = true

						stations := resolver.StationsList(tripID)
						if len(stations) == 0 {
							continue
						}
						fmt.Printf("%s\t%s\t%s\n", tsn, stations[0], stations[len(stations)-1])
					}
					if len(dupes) > 0 {
						log.Warn().Strs("trainNumbers", dupes).Msg("Some train numbers appear more than once")
					}
					return nil
				},
			},
		},
	}
}

func loadResolver(gtfsPath string, date string) (*Resolver, error) {
	loaded, err := gtfs.ParseZip(gtfsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load GTFS %s: %w", gtfsPath, err)
	}
	view := NewView(loaded).FilterByDates(date, date)
	return NewResolver(view), nil
}
