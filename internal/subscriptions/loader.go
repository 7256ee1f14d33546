package subscriptions

import (
	"cvewatch/internal/models"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gookit/validate"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// jobEntry is validated per entry with entryRules.
type jobEntry struct {
	Vendor               string                 `yaml:"vendor"`
	Products             []string               `yaml:"products"`
	AdditionalParameters map[string]interface{} `yaml:"additional_parameters"`
}

var entryRules = validate.MS{
	"Vendor":   "required",
	"Products": "required",
}

type jobFile struct {
	StartTime int        `yaml:"starttime" validate:"int|min:0|max:23"`
	Interval  int        `yaml:"interval" validate:"required|int|min:1"`
	Updates   bool       `yaml:"updates"`
	SendTo    []string   `yaml:"send_to" validate:"required"`
	Jobs      []jobEntry `yaml:"jobs" validate:"required"`
}

// Definition is one validated subscription as written in a job file, before a
// watermark is attached.
type Definition struct {
	StartOffset   int
	IntervalHours int
	FetchUpdates  bool
	Recipient     string
	Vendor        string
	Products      []string
	SourceFile    string
	ExtraParams   map[string]string
}

// LoadDir parses every job file in dir matching pattern. A file that cannot be used
// is reported as a ConfigLoadError and skipped; the others still load.
func LoadDir(dir, pattern string) ([]Definition, []error) {
	if pattern == "" {
		pattern = "*.yaml"
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, []error{&models.ConfigLoadError{Source: dir, Err: err}}
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, []error{&models.ConfigLoadError{Source: dir, Err: err}}
	}
	sort.Strings(files)

	var defs []Definition
	var errs []error
	for _, path := range files {
		fileDefs, fileErrs := LoadFile(path)
		defs = append(defs, fileDefs...)
		errs = append(errs, fileErrs...)
	}
	return defs, errs
}

// LoadFile parses one job file: one definition per job entry and recipient.
// A broken entry is skipped with its own error.
func LoadFile(path string) ([]Definition, []error) {
	source := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&models.ConfigLoadError{Source: source, Err: err}}
	}

	var file jobFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, []error{&models.ConfigLoadError{Source: source, Err: err}}
	}
	if err := validateStruct(&file, nil); err != nil {
		return nil, []error{&models.ConfigLoadError{Source: source, Err: err}}
	}
	for _, addr := range file.SendTo {
		if !validate.IsEmail(addr) {
			return nil, []error{&models.ConfigLoadError{Source: source, Err: fmt.Errorf("send_to: invalid address %q", addr)}}
		}
	}

	var defs []Definition
	var errs []error
	for i := range file.Jobs {
		entry := &file.Jobs[i]
		if err := validateStruct(entry, entryRules); err != nil {
			errs = append(errs, &models.ConfigLoadError{Source: source, Err: fmt.Errorf("jobs[%d]: %w", i, err)})
			continue
		}
		params, err := stringParams(entry.AdditionalParameters)
		if err != nil {
			errs = append(errs, &models.ConfigLoadError{Source: source, Err: fmt.Errorf("jobs[%d]: %w", i, err)})
			continue
		}
		for _, addr := range file.SendTo {
			defs = append(defs, Definition{
				StartOffset:   file.StartTime,
				IntervalHours: file.Interval,
				FetchUpdates:  file.Updates,
				Recipient:     addr,
				Vendor:        strings.TrimSpace(entry.Vendor),
				Products:      append([]string(nil), entry.Products...),
				SourceFile:    source,
				ExtraParams:   params,
			})
		}
	}
	return defs, errs
}

func validateStruct(v interface{}, rules validate.MS) error {
	vd := validate.Struct(v)
	if rules != nil {
		vd.StringRules(rules)
	}
	if !vd.Validate() {
		return vd.Errors
	}
	return nil
}

// stringParams renders parameter values as query strings. A key without value
// becomes a bare flag; lists and maps are rejected.
func stringParams(in map[string]interface{}) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for k, v := range in {
		value, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("additional_parameters.%s: %w", k, err)
		}
		out[k] = value
	}
	return out, nil
}
