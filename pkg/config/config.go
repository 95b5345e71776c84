package config

import (
	"github.com/sirupsen/logrus"

	"github.com/hayabusaracing/rig/pkg/dynamics"
	"github.com/hayabusaracing/rig/pkg/tether"
)

type Config interface {
	Geometry() tether.Geometry
	TensionScale() float64
	CurvePoints() int
	TensionYMax() float64
	FitMaxEvaluations() int

	ThrustInput() string
	ThrustJSONOutput() string
	ThrustPlotOutput() string
	DPI() int

	RaceParams() dynamics.Params
	FinishDistance() float64

	SetGeometry(tether.Geometry)
	SetThrustInput(string)

	// Validate checks the configured values for consistency.
	Validate() error
	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
