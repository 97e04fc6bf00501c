package timetable

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/neroden/timetable-kit/pkg/agency"
	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/schedule"
	"github.com/neroden/timetable-kit/pkg/spec"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "timetable",
		Usage: "Generate timetables from tt-specs",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Fill one or more tt-specs from a GTFS schedule",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "gtfs",
						Usage:    "Path of the GTFS zip file",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "spec",
						Usage:    "Name of a tt-spec to generate (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "input-dir",
						Usage: "Directory holding the tt-spec files",
						Value: ".",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory to write timetables into",
						Value: ".",
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Reference date (YYYYMMDD), overriding the spec's",
					},
					&cli.StringFlag{
						Name:  "agency",
						Usage: "Agency-specific behavior: generic or amtrak",
						Value: "generic",
					},
					&cli.StringSliceFlag{
						Name:  "bad-service-ids",
						Usage: "Known-bad service_ids to drop from the schedule (repeatable)",
					},
				},
				Action: func(c *cli.Context) error {
					view, err := loadView(c.String("gtfs"))
					if err != nil {
						return err
					}
					if bad := c.StringSlice("bad-service-ids"); len(bad) > 0 {
						view = view.FilterBadServiceIDs(bad)
						log.Info().Strs("serviceIDs", bad).Msg("Dropped bad service_ids")
					}
					ag, err := agencyByName(c.String("agency"), view)
					if err != nil {
						return err
					}

					for _, name := range c.StringSlice("spec") {
						ttSpec, err := spec.FromFiles(name, c.String("input-dir"))
						if err != nil {
							return err
						}
						ttSpec.SetReferenceDate(c.String("date"))

						doc, err := Generate(ttSpec, view, ag)
						if err != nil {
							return fmt.Errorf("failed to generate %s: %w", name, err)
						}
						text, err := RenderDocument(doc)
						if err != nil {
							return err
						}

						outPath := filepath.Join(c.String("output-dir"), ttSpec.Aux.OutputFilename+".txt")
						if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
							return err
						}
						log.Info().Str("path", outPath).Msg("Wrote timetable")
					}
					return nil
				},
			},
			{
				Name:  "inspect",
				Usage: "Dump a preprocessed tt-spec structure",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "spec",
						Usage:    "Name of the tt-spec to inspect",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "input-dir",
						Usage: "Directory holding the tt-spec files",
						Value: ".",
					},
				},
				Action: func(c *cli.Context) error {
					ttSpec, err := spec.FromFiles(c.String("spec"), c.String("input-dir"))
					if err != nil {
						return err
					}
					ttSpec.StripOmits()
					ttSpec.ExtractColumnOptions()
					pretty.Println(ttSpec)
					return nil
				},
			},
		},
	}
}

func loadView(path string) (*schedule.View, error) {
	loaded, err := gtfs.ParseZip(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load GTFS %s: %w", path, err)
	}
	return schedule.NewView(loaded), nil
}

func agencyByName(name string, view *schedule.View) (agency.Agency, error) {
	switch name {
	case "generic", "":
		return agency.NewGeneric(view), nil
	case "amtrak":
		return agency.NewAmtrak(view), nil
	}
	return nil, &schedule.InputError{Message: fmt.Sprintf("unknown agency %q", name)}
}
