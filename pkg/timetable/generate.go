package timetable

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/neroden/timetable-kit/pkg/agency"
	"github.com/neroden/timetable-kit/pkg/schedule"
	"github.com/neroden/timetable-kit/pkg/spec"
)

// Generate runs the whole pipeline for one spec: preprocessing, page
// splitting, classification, and cell resolution. The view is the full
// loaded schedule; each page works on a copy narrowed to the reference
// date and the spec's own trains.
func Generate(ttSpec *spec.TTSpec, view *schedule.View, ag agency.Agency) (*Document, error) {
	doc := &Document{Title: ttSpec.Aux.Title}

	pages, err := ttSpec.Split()
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		page.StripOmits()
		page.ExtractColumnOptions()

		if page.Aux.ReferenceDate == "" {
			return nil, &schedule.InputError{Message: "no reference date in options file or at command line"}
		}
		todayView := view.FilterByDates(page.Aux.ReferenceDate, page.Aux.ReferenceDate)

		if err := page.AugmentFromKeyCell(todayView); err != nil {
			return nil, fmt.Errorf("failed to expand shorthand spec: %w", err)
		}

		reducedView, err := reduceView(page, todayView)
		if err != nil {
			return nil, err
		}

		parsed, err := spec.Parse(page, reducedView, ag.StopCodeToStopID)
		if err != nil {
			return nil, err
		}

		filled, err := Fill(parsed, reducedView, ag)
		if err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, filled)
	}

	log.Info().Int("pages", len(doc.Pages)).Str("output", ttSpec.Aux.OutputFilename).
		Msg("Filled timetable")
	return doc, nil
}

// reduceView narrows a single-day view to the spec's own trains. The
// timepoint scans dominate fill time, so a small stop_times table matters.
func reduceView(page *spec.TTSpec, todayView *schedule.View) (*schedule.View, error) {
	var tsns []string
	for _, header := range page.GetTrainSpecsList() {
		trains, err := spec.ParseTrainsSpec(header)
		if err != nil {
			return nil, err
		}
		for _, ts := range trains {
			tsns = append(tsns, ts.TripShortName)
		}
	}
	// Stops are left alone: specs reference stations the reduced trips may
	// not stop at, and station validation needs them all.
	return todayView.FilterByTripShortNames(tsns), nil
}
