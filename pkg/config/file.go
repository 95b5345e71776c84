package config

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/hayabusaracing/rig/pkg/dynamics"
	"github.com/hayabusaracing/rig/pkg/tether"
	"github.com/hayabusaracing/rig/pkg/utils/ptr"
)

// ErrInvalidConfig is returned when the loaded values are inconsistent.
var ErrInvalidConfig = errors.New("invalid config")

var (
	defaultFileConfig = &RawFileConfig{
		TotalSpan:         ptr.To(tether.DefaultGeometry.TotalSpan),
		TetherLength:      ptr.To(tether.DefaultGeometry.TetherLength),
		SagHeight:         ptr.To(tether.DefaultGeometry.SagHeight),
		TensionScale:      ptr.To(tether.DefaultScale),
		CurvePoints:       ptr.To(tether.DefaultCurvePoints),
		TensionYMax:       ptr.To(0.1),
		FitMaxEvaluations: ptr.To(tether.DefaultMaxEvaluations),

		// Relative to the working directory, as the rig scripts always were.
		ThrustInput:      ptr.To("thrust.csv"),
		ThrustJSONOutput: ptr.To("thrust_average.json"),
		ThrustPlotOutput: ptr.To("thrust_decay_analysis.png"),
		DPI:              ptr.To(300),

		RaceMass:           ptr.To(dynamics.DefaultParams.Mass),
		RaceDrag:           ptr.To(dynamics.DefaultParams.Drag),
		RaceThrust:         ptr.To(dynamics.DefaultParams.Thrust),
		RaceCutoffMs:       ptr.To(int(dynamics.DefaultParams.Cutoff / time.Millisecond)),
		RaceDurationMs:     ptr.To(int(dynamics.DefaultParams.Duration / time.Millisecond)),
		RaceStepsPerMs:     ptr.To(dynamics.DefaultParams.StepsPerMs),
		RaceMethod:         ptr.To(string(dynamics.DefaultParams.Method)),
		RaceLosses:         ptr.To(dynamics.DefaultParams.Losses),
		RaceFinishDistance: ptr.To(20.0),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

// DefaultRawFileConfig returns a copy of the built-in defaults with every
// field set.
func DefaultRawFileConfig() *RawFileConfig {
	c := *defaultFileConfig
	return &c
}

type RawFileConfig struct {
	TotalSpan         *float64 `json:"totalSpan,omitempty" yaml:"totalSpan,omitempty"`
	TetherLength      *float64 `json:"tetherLength,omitempty" yaml:"tetherLength,omitempty"`
	SagHeight         *float64 `json:"sagHeight,omitempty" yaml:"sagHeight,omitempty"`
	TensionScale      *float64 `json:"tensionScale,omitempty" yaml:"tensionScale,omitempty"`
	CurvePoints       *int     `json:"curvePoints,omitempty" yaml:"curvePoints,omitempty"`
	TensionYMax       *float64 `json:"tensionYMax,omitempty" yaml:"tensionYMax,omitempty"`
	FitMaxEvaluations *int     `json:"fitMaxEvaluations,omitempty" yaml:"fitMaxEvaluations,omitempty"`

	ThrustInput      *string `json:"thrustInput,omitempty" yaml:"thrustInput,omitempty"`
	ThrustJSONOutput *string `json:"thrustJSONOutput,omitempty" yaml:"thrustJSONOutput,omitempty"`
	ThrustPlotOutput *string `json:"thrustPlotOutput,omitempty" yaml:"thrustPlotOutput,omitempty"`
	DPI              *int    `json:"dpi,omitempty" yaml:"dpi,omitempty"`

	RaceMass           *float64 `json:"raceMass,omitempty" yaml:"raceMass,omitempty"`
	RaceDrag           *float64 `json:"raceDrag,omitempty" yaml:"raceDrag,omitempty"`
	RaceThrust         *float64 `json:"raceThrust,omitempty" yaml:"raceThrust,omitempty"`
	RaceCutoffMs       *int     `json:"raceCutoffMs,omitempty" yaml:"raceCutoffMs,omitempty"`
	RaceDurationMs     *int     `json:"raceDurationMs,omitempty" yaml:"raceDurationMs,omitempty"`
	RaceStepsPerMs     *int     `json:"raceStepsPerMs,omitempty" yaml:"raceStepsPerMs,omitempty"`
	RaceMethod         *string  `json:"raceMethod,omitempty" yaml:"raceMethod,omitempty"`
	RaceFinishDistance *float64 `json:"raceFinishDistance,omitempty" yaml:"raceFinishDistance,omitempty"`

	// RaceLosses replaces the whole block when set.
	RaceLosses *dynamics.Losses `json:"raceLosses,omitempty" yaml:"raceLosses,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	g := c.Geometry()
	p := c.RaceParams()
	rawConfig := &RawFileConfig{
		TotalSpan:         ptr.To(g.TotalSpan),
		TetherLength:      ptr.To(g.TetherLength),
		SagHeight:         ptr.To(g.SagHeight),
		TensionScale:      ptr.To(c.TensionScale()),
		CurvePoints:       ptr.To(c.CurvePoints()),
		TensionYMax:       ptr.To(c.TensionYMax()),
		FitMaxEvaluations: ptr.To(c.FitMaxEvaluations()),

		ThrustInput:      ptr.To(c.ThrustInput()),
		ThrustJSONOutput: ptr.To(c.ThrustJSONOutput()),
		ThrustPlotOutput: ptr.To(c.ThrustPlotOutput()),
		DPI:              ptr.To(c.DPI()),

		RaceMass:           ptr.To(p.Mass),
		RaceDrag:           ptr.To(p.Drag),
		RaceThrust:         ptr.To(p.Thrust),
		RaceCutoffMs:       ptr.To(int(p.Cutoff / time.Millisecond)),
		RaceDurationMs:     ptr.To(int(p.Duration / time.Millisecond)),
		RaceStepsPerMs:     ptr.To(p.StepsPerMs),
		RaceMethod:         ptr.To(string(p.Method)),
		RaceFinishDistance: ptr.To(c.FinishDistance()),
		RaceLosses:         ptr.To(p.Losses),
	}

	return rawConfig, nil
}

func get[T any](f *File, field func(*RawFileConfig) *T) T {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(field(f.c), *field(defaultFileConfig))
}

func (f *File) Geometry() tether.Geometry {
	return tether.Geometry{
		TotalSpan:    get(f, func(c *RawFileConfig) *float64 { return c.TotalSpan }),
		TetherLength: get(f, func(c *RawFileConfig) *float64 { return c.TetherLength }),
		SagHeight:    get(f, func(c *RawFileConfig) *float64 { return c.SagHeight }),
	}
}

func (f *File) TensionScale() float64 {
	return get(f, func(c *RawFileConfig) *float64 { return c.TensionScale })
}

func (f *File) CurvePoints() int {
	return get(f, func(c *RawFileConfig) *int { return c.CurvePoints })
}

func (f *File) TensionYMax() float64 {
	return get(f, func(c *RawFileConfig) *float64 { return c.TensionYMax })
}

func (f *File) FitMaxEvaluations() int {
	return get(f, func(c *RawFileConfig) *int { return c.FitMaxEvaluations })
}

func (f *File) ThrustInput() string {
	return get(f, func(c *RawFileConfig) *string { return c.ThrustInput })
}

func (f *File) ThrustJSONOutput() string {
	return get(f, func(c *RawFileConfig) *string { return c.ThrustJSONOutput })
}

func (f *File) ThrustPlotOutput() string {
	return get(f, func(c *RawFileConfig) *string { return c.ThrustPlotOutput })
}

func (f *File) DPI() int {
	return get(f, func(c *RawFileConfig) *int { return c.DPI })
}

func (f *File) RaceParams() dynamics.Params {
	return dynamics.Params{
		Mass:       get(f, func(c *RawFileConfig) *float64 { return c.RaceMass }),
		Drag:       get(f, func(c *RawFileConfig) *float64 { return c.RaceDrag }),
		Thrust:     get(f, func(c *RawFileConfig) *float64 { return c.RaceThrust }),
		Cutoff:     time.Duration(get(f, func(c *RawFileConfig) *int { return c.RaceCutoffMs })) * time.Millisecond,
		Duration:   time.Duration(get(f, func(c *RawFileConfig) *int { return c.RaceDurationMs })) * time.Millisecond,
		StepsPerMs: get(f, func(c *RawFileConfig) *int { return c.RaceStepsPerMs }),
		Method:     dynamics.Method(get(f, func(c *RawFileConfig) *string { return c.RaceMethod })),
		Losses:     get(f, func(c *RawFileConfig) *dynamics.Losses { return c.RaceLosses }),
	}
}

func (f *File) FinishDistance() float64 {
	return get(f, func(c *RawFileConfig) *float64 { return c.RaceFinishDistance })
}

func (f *File) SetGeometry(g tether.Geometry) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.TotalSpan = &g.TotalSpan
	f.c.TetherLength = &g.TetherLength
	f.c.SagHeight = &g.SagHeight
}

func (f *File) SetThrustInput(path string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ThrustInput = &path
}

func (f *File) Validate() error {
	if err := f.Geometry().Validate(); err != nil {
		return pkgerrors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	if err := f.RaceParams().Validate(); err != nil {
		return pkgerrors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	if f.DPI() <= 0 {
		return pkgerrors.Wrapf(ErrInvalidConfig, "dpi must be positive, got %d", f.DPI())
	}
	if f.CurvePoints() < 2 {
		return pkgerrors.Wrapf(ErrInvalidConfig, "curve points must be at least 2, got %d", f.CurvePoints())
	}
	if f.ThrustInput() == "" {
		return pkgerrors.Wrap(ErrInvalidConfig, "thrust input path is empty")
	}
	return nil
}

func (f *File) isYAML() bool {
	switch strings.ToLower(filepath.Ext(f.filepath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using a decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	if f.isYAML() {
		err = yaml.Unmarshal(b, &conf)
	} else {
		err = json.Unmarshal(b, &conf)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	if f.isYAML() {
		enc := yaml.NewEncoder(fp)
		enc.SetIndent(2)
		err = enc.Encode(f.c)
		if err == nil {
			err = enc.Close()
		}
	} else {
		enc := json.NewEncoder(fp)
		enc.SetIndent("", "  ")
		err = enc.Encode(f.c)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	g := f.Geometry()
	return logrus.Fields{
		"totalSpan":    g.TotalSpan,
		"tetherLength": g.TetherLength,
		"sagHeight":    g.SagHeight,
		"tensionScale": f.TensionScale(),
		"thrustInput":  f.ThrustInput(),
		"dpi":          f.DPI(),
	}
}
