package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/g5becks/eqrender/internal/render"
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

const (
	DefaultOutput     = "equations"
	DefaultParallel   = 1
	DefaultFormat     = "table"
	DefaultBodyLength = 60

	validationTagRGBHex = "rgbhex"
)

func Formats() []string {
	return []string{"table", "json", "csv"}
}

type Config struct {
	Output              string    `koanf:"output"               validate:"required"`
	Color               string    `koanf:"color"                validate:"required,rgbhex"`
	DeleteIntermediates bool      `koanf:"delete_intermediates"`
	Parallel            int       `koanf:"parallel"             validate:"min=1"`
	Toolchain           Toolchain `koanf:"toolchain"`
	Display             Display   `koanf:"display"`
	// ConfigDir is the directory relative paths resolve against.
	ConfigDir string `koanf:"-"`
	// Path is the loaded config file, empty when running on defaults.
	Path string `koanf:"-"`
}

type Toolchain struct {
	Engine     string `koanf:"engine"     validate:"required"`
	Rasterizer string `koanf:"rasterizer" validate:"required"`
}

type Display struct {
	Format     string `koanf:"format"      validate:"oneof=table json csv"`
	BodyLength int    `koanf:"body_length" validate:"min=0"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation(validationTagRGBHex, func(fl validator.FieldLevel) bool {
		_, err := render.NormalizeColor(fl.Field().String())
		return err == nil
	})

	return v
}

func (c *Config) ApplyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}

	if c.Color == "" {
		c.Color = render.DefaultColor
	}

	if c.Parallel == 0 {
		c.Parallel = DefaultParallel
	}

	if c.Toolchain.Engine == "" {
		c.Toolchain.Engine = render.DefaultEngine
	}

	if c.Toolchain.Rasterizer == "" {
		c.Toolchain.Rasterizer = render.DefaultRasterizer
	}

	if c.Display.Format == "" {
		c.Display.Format = DefaultFormat
	}

	if c.Display.BodyLength == 0 {
		c.Display.BodyLength = DefaultBodyLength
	}
}

// Validate checks the config and reports the first violation.
func (c *Config) Validate() error {
	valErr := newValidator().Struct(c)
	if valErr == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(valErr, &validationErrors) {
		return oops.
			Code("CONFIG_INVALID").
			Wrapf(valErr, "validating config")
	}

	for _, fe := range validationErrors {
		return mapValidationError(c, fe)
	}

	return nil
}

func mapValidationError(c *Config, fe validator.FieldError) error {
	field := strings.ToLower(fe.Field())

	switch {
	case fe.Tag() == validationTagRGBHex:
		return oops.
			Code("CONFIG_INVALID").
			With("field", "color").
			With("value", c.Color).
			Hint("Use a 6 digit hex colour such as #1A2B3C").
			Errorf("invalid color %q", c.Color)

	case fe.Tag() == "oneof" && field == "format":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "display.format").
			With("value", c.Display.Format).
			Hint("Supported formats: "+strings.Join(Formats(), ", ")).
			Errorf("unknown display format %q", c.Display.Format)

	case fe.Tag() == "min" && field == "parallel":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "parallel").
			With("value", c.Parallel).
			Hint("Set parallel to 1 or more").
			Errorf("invalid parallel value %d", c.Parallel)

	case fe.Tag() == "min" && field == "bodylength":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "display.body_length").
			With("value", c.Display.BodyLength).
			Hint("Set body_length to 0 or more").
			Errorf("invalid body_length %d", c.Display.BodyLength)

	default:
		return oops.
			Code("CONFIG_INVALID").
			With("field", field).
			With("tag", fe.Tag()).
			Errorf("validation failed for field %q", field)
	}
}

// ResolvePath makes path absolute against ConfigDir.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Clean(filepath.Join(c.ConfigDir, path))
}
