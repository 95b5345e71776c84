// Package server exposes the rig computations as a JSON API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hayabusaracing/rig/pkg/config"
	"github.com/hayabusaracing/rig/pkg/events"
	"github.com/hayabusaracing/rig/pkg/metrics"
)

// DefaultReloadSchedule is how often the served thrust dataset is re-read.
const DefaultReloadSchedule = "@every 1m"

type Server struct {
	conf    config.Config
	hub     *events.Hub
	dataset *dataset
	router  *gin.Engine
}

func New(conf config.Config) *Server {
	hub := events.NewHub()
	s := &Server{
		conf:    conf,
		hub:     hub,
		dataset: &dataset{hub: hub},
	}
	s.router = s.setupRoutes()
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.Use(metrics.Middleware())
	router.GET("/config", s.getConfig)
	router.GET("/tension", s.getTension)
	router.GET("/tension/curve", s.getTensionCurve)
	router.POST("/tether/fit", s.postTetherFit)
	router.POST("/thrust/analyze", s.postThrustAnalyze)
	router.GET("/thrust/impulse", s.getThrustImpulse)
	router.GET("/events", s.getEvents)
	router.GET("/version", getVersion)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

// Run serves the API on addr until SIGINT or SIGTERM. The configured thrust
// dataset is loaded at start and re-read on reloadSchedule; SIGHUP reloads
// the config and the dataset immediately.
func (s *Server) Run(addr, reloadSchedule string) error {
	if reloadSchedule == "" {
		reloadSchedule = DefaultReloadSchedule
	}

	if err := s.dataset.reload(s.conf.ThrustInput()); err != nil {
		logrus.Warnf("no thrust dataset served until %s loads: %v", s.conf.ThrustInput(), err)
	}

	r, err := newReloader(reloadSchedule, func() error {
		return s.dataset.reload(s.conf.ThrustInput())
	})
	if err != nil {
		return err
	}
	r.Start()
	defer r.Stop()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := s.conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(s.conf.LogrusFields()).Infof("config reloaded")
			if err := s.dataset.reload(s.conf.ThrustInput()); err != nil {
				logrus.Errorf("failed to reload thrust dataset: %v", err)
			}
		}
	}()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("exiting")
	return nil
}
