package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of both tools. Zero values in a loaded file keep
// the defaults.
type Config struct {
	Tablet      Tablet      `yaml:"tablet"`
	Temperature Temperature `yaml:"temperature"`
}

// Tablet configures the spreadsheet-to-document generator.
type Tablet struct {
	// HeaderRow is the one-based row holding the column headers.
	HeaderRow int     `yaml:"header_row"`
	Columns   Columns `yaml:"columns"`
	Tokens    Tokens  `yaml:"tokens"`

	// OutputDirName is created next to the input spreadsheet when no
	// explicit output directory is given.
	OutputDirName string `yaml:"output_dir_name"`

	Font         string  `yaml:"font"`
	MaxFontSize  int     `yaml:"max_font_size"`
	MinFontSize  int     `yaml:"min_font_size"`
	SizeFreeLen  int     `yaml:"size_free_length"`
	SizeStep     int     `yaml:"size_step"`
	LineSpacing  float64 `yaml:"line_spacing"`
	MarginInches float64 `yaml:"margin_inches"`
}

// Columns names the required spreadsheet headers.
type Columns struct {
	Name      string `yaml:"name"`
	Ancestors string `yaml:"ancestors"`
	Address   string `yaml:"address"`
}

// Tokens are the literal placeholders looked for in the template.
type Tokens struct {
	Name      string `yaml:"name"`
	Address   string `yaml:"address"`
	Date      string `yaml:"date"`
	Ancestors string `yaml:"ancestors"`
}

// Temperature configures the temperature aggregator.
type Temperature struct {
	Sheet      string `yaml:"sheet"`
	ReportName string `yaml:"report_name"`
	ReportTab  string `yaml:"report_sheet"`

	// Rooms lists the accepted room labels in their canonical spelling.
	Rooms []string `yaml:"rooms"`
	// Colors maps a room label to the RGB fill of its report rows.
	Colors map[string]string `yaml:"colors"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tablet: Tablet{
			HeaderRow: 5,
			Columns: Columns{
				Name:      "姓名",
				Ancestors: "牌位1",
				Address:   "您的住址",
			},
			Tokens: Tokens{
				Name:      "{姓名}",
				Address:   "{地址}",
				Date:      "{日期}",
				Ancestors: "{牌位1}",
			},
			OutputDirName: "Output",
			Font:          "標楷體",
			MaxFontSize:   27,
			MinFontSize:   10,
			SizeFreeLen:   30,
			SizeStep:      5,
			LineSpacing:   0.4,
			MarginInches:  0.3,
		},
		Temperature: Temperature{
			Sheet:      "Room Data",
			ReportName: "溫度彙整報告.xlsx",
			ReportTab:  "Temperature Report",
			Rooms:      []string{"LivingRoom", "Bedroom", "Kitchen"},
			Colors: map[string]string{
				"LivingRoom": "FFCCCB",
				"Bedroom":    "ADD8E6",
				"Kitchen":    "90EE90",
			},
		},
	}
}

// Load reads a YAML file and overlays it onto Default. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(bs)
}

// Parse overlays YAML data onto Default.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise make a run misbehave.
func (c Config) Validate() error {
	t := c.Tablet
	if t.HeaderRow < 1 {
		return fmt.Errorf("tablet.header_row must be at least 1, got %d", t.HeaderRow)
	}
	if t.MinFontSize > t.MaxFontSize {
		return fmt.Errorf("tablet.min_font_size %d exceeds max_font_size %d", t.MinFontSize, t.MaxFontSize)
	}
	if t.SizeStep < 1 {
		return fmt.Errorf("tablet.size_step must be positive, got %d", t.SizeStep)
	}
	if len(c.Temperature.Rooms) == 0 {
		return fmt.Errorf("temperature.rooms must not be empty")
	}
	return nil
}
