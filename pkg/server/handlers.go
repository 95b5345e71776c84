package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hayabusaracing/rig/pkg/config"
	"github.com/hayabusaracing/rig/pkg/metrics"
	"github.com/hayabusaracing/rig/pkg/tether"
	"github.com/hayabusaracing/rig/pkg/thrust"
	"github.com/hayabusaracing/rig/pkg/version"
)

// maxCurvePoints bounds /tension/curve responses.
const maxCurvePoints = 100000

func abort(c *gin.Context, code int, err error) {
	c.IndentedJSON(code, gin.H{"error": err.Error()})
	_ = c.AbortWithError(code, err)
}

// queryFloat parses an optional finite float query parameter.
func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	s, ok := c.GetQuery(key)
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}

func (s *Server) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(s.conf)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (s *Server) getTension(c *gin.Context) {
	g := s.conf.Geometry()
	var err error
	params := []struct {
		key string
		dst *float64
	}{
		{"span", &g.TotalSpan},
		{"length", &g.TetherLength},
		{"sag", &g.SagHeight},
	}
	for _, p := range params {
		if *p.dst, err = queryFloat(c, p.key, *p.dst); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
	}
	if err := g.Validate(); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	k, err := queryFloat(c, "k", s.conf.TensionScale())
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	x, err := queryFloat(c, "x", g.Reach()/2)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if x < 0 || x > g.Reach() {
		abort(c, http.StatusBadRequest, fmt.Errorf("position %g outside [0, %g]", x, g.Reach()))
		return
	}

	c.IndentedJSON(http.StatusOK, tether.Point{X: x, Tension: tether.Tension(x, g, k)})
}

func (s *Server) getTensionCurve(c *gin.Context) {
	n := s.conf.CurvePoints()
	if q := c.Query("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 2 || v > maxCurvePoints {
			abort(c, http.StatusBadRequest, fmt.Errorf("n must be an integer in [2, %d], got %q", maxCurvePoints, q))
			return
		}
		n = v
	}

	pts, err := tether.Curve(s.conf.Geometry(), s.conf.TensionScale(), n)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, pts)
}

func (s *Server) postTetherFit(c *gin.Context) {
	var ds tether.Dataset
	if err := c.BindJSON(&ds); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if ds.NominalHeightMm <= 0 {
		abort(c, http.StatusBadRequest, fmt.Errorf("nominalHeightMm must be positive, got %g", ds.NominalHeightMm))
		return
	}

	m, err := tether.Fit(ds.Samples, s.conf.Geometry().Reach(), tether.InitialGuess(ds.NominalHeightMm), tether.FitOptions{
		MaxEvaluations: s.conf.FitMaxEvaluations(),
	})
	metrics.ObserveFit(err == nil)
	if err != nil {
		if errors.Is(err, tether.ErrFitFailed) {
			abort(c, http.StatusUnprocessableEntity, err)
			return
		}
		abort(c, http.StatusInternalServerError, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"heightMm": ds.NominalHeightMm,
		"scale":    m.Scale,
		"h":        m.EffectiveHeight,
	}).Debug("tether fit converged")

	c.IndentedJSON(http.StatusOK, m)
}

func (s *Server) postThrustAnalyze(c *gin.Context) {
	t, err := thrust.ReadCSV(c.Request.Body)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	a, err := thrust.Analyze(t)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if a.Degenerate() {
		abort(c, http.StatusUnprocessableEntity, errors.New("statistics are undefined for constant or zero-mean attempts"))
		return
	}
	metrics.ObserveVerdict(string(a.Validity.Verdict))

	c.IndentedJSON(http.StatusOK, a)
}

func (s *Server) getThrustImpulse(c *gin.Context) {
	doc, loadedAt := s.dataset.current()
	if doc == nil {
		abort(c, http.StatusServiceUnavailable, fmt.Errorf("no thrust dataset loaded from %s", s.conf.ThrustInput()))
		return
	}
	c.Header("Last-Modified", loadedAt.UTC().Format(http.TimeFormat))
	c.Header("X-Loaded-At", loadedAt.Format(time.RFC3339))
	c.IndentedJSON(http.StatusOK, doc)
}

// getEvents streams dataset events as server-sent events until the client
// goes away.
func (s *Server) getEvents(c *gin.Context) {
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent(ev.Name, ev.Data)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"version": version.Version,
		"commit":  version.GitCommit,
	})
}
