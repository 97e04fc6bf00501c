package spec

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const DefaultDwellSecsCutoff = 300

// Options is the aux document accompanying a timetable grid, sharing its
// base name. Everything is optional except that a reference date must be
// present by the time the timetable is filled (it can also arrive from the
// command line).
type Options struct {
	Title          string `yaml:"title"`
	Heading        string `yaml:"heading"`
	AriaLabel      string `yaml:"aria_label"`
	OutputFilename string `yaml:"output_filename"`
	ReferenceDate  string `yaml:"reference_date" validate:"omitempty,len=8,numeric"`
	TopText        string `yaml:"top_text"`
	BottomText     string `yaml:"bottom_text"`

	// DwellSecsCutoff switches a station row to two-row Ar/Dp format once
	// any train dwells there at least this long. Zero, explicit or absent,
	// is coerced to the 300 second default; a timetable that never wants
	// two-row cells should set the cutoff absurdly high instead.
	DwellSecsCutoff        int  `yaml:"dwell_secs_cutoff" validate:"gte=0"`
	TrainNumbersSideBySide bool `yaml:"train_numbers_side_by_side"`
	Times24h               bool `yaml:"times_24h"`
	MaxColumnsPerPage      int  `yaml:"max_columns_per_page" validate:"gte=0"`
	AllowDuplicateTrips    bool `yaml:"allow_duplicate_trips"`
	UseBusIconInCells      bool `yaml:"use_bus_icon_in_cells"`

	ProgrammersWarning string `yaml:"programmers_warning"`
}

var validate = validator.New()

// LoadOptions reads and validates an aux YAML file. A missing file is not
// an error; it yields defaults.
func LoadOptions(path string) (*Options, error) {
	options := &Options{DwellSecsCutoff: DefaultDwellSecsCutoff}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("No aux options file")
		return options, nil
	} else if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, options); err != nil {
		return nil, err
	}
	if options.DwellSecsCutoff == 0 {
		options.DwellSecsCutoff = DefaultDwellSecsCutoff
	}
	if err := validate.Struct(options); err != nil {
		return nil, err
	}

	return options, nil
}
