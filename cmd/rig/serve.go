package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hayabusaracing/rig/pkg/server"
	"github.com/hayabusaracing/rig/pkg/version"
)

func NewServeCommand() *cobra.Command {
	var (
		addr   string
		reload string
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the rig computations over HTTP",
		GroupID: gAdvanced,
		Long: `Serve the rig computations as a JSON API.

The thrust input from the config file is served at /thrust/impulse and
re-read on the --reload schedule. Send SIGHUP to reload the config file.
Prometheus metrics are exposed at /metrics.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("rig server starting")
			return server.New(conf).Run(addr, reload)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "address to listen on")
	f.StringVar(&reload, "reload", server.DefaultReloadSchedule, "cron schedule for re-reading the thrust input")

	return cmd
}
