package main

import (
	"bufio"
	"bytes"
	"os"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hayabusaracing/rig/pkg/thrust"
)

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("⚠")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func ratingText(r thrust.Rating) string {
	switch r {
	case thrust.Excellent, thrust.Good:
		return color.New(color.Bold, color.FgGreen).Sprint(r)
	case thrust.Acceptable:
		return color.New(color.Bold, color.FgYellow).Sprint(r)
	default:
		return color.New(color.Bold, color.FgRed).Sprint(r)
	}
}

func verdictText(v thrust.Verdict) string {
	switch v {
	case thrust.HighlyValid, thrust.Valid:
		return color.New(color.Bold, color.FgGreen).Sprint(v)
	case thrust.ModeratelyValid:
		return color.New(color.Bold, color.FgYellow).Sprint(v)
	default:
		return color.New(color.Bold, color.FgRed).Sprint(v)
	}
}

// writeFile writes the rendered bytes of an output file.
func writeFile(path string, b *bytes.Buffer) error {
	fp, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create %s", path)
	}

	bw := bufio.NewWriter(fp)
	if _, err := b.WriteTo(bw); err != nil {
		_ = fp.Close()
		return pkgerrors.Wrapf(err, "failed to write %s", path)
	}
	if err := bw.Flush(); err != nil {
		_ = fp.Close()
		return pkgerrors.Wrapf(err, "failed to write %s", path)
	}
	return pkgerrors.Wrapf(fp.Close(), "failed to close %s", path)
}

// overrideFloat replaces *dst with the flag value when the user set it.
func overrideFloat(cmd *cobra.Command, name string, dst *float64) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func overrideInt(cmd *cobra.Command, name string, dst *int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
