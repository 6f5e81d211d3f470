// Package classifierstub serves a fake classifier implementing the predict
// and train endpoints. It backs the controller tests and `digitpad stub`.
package classifierstub

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"digitpad/internal/classifier"
	"digitpad/internal/logging"
	"digitpad/internal/raster"
)

// Scorer produces class confidences for a decoded image.
type Scorer func(img *raster.Image, expected *int) [classifier.Classes]float64

// Call is one recorded request.
type Call struct {
	Method   string
	Path     string
	Image    *raster.Image
	Expected *int
	Correct  *bool
}

// Server is a gin engine standing in for the classifier.
type Server struct {
	engine *gin.Engine
	logger *logging.Logger

	mu     sync.Mutex
	scorer Scorer
	status int // forced status for every response when non-zero
	raw    string
	calls  []Call
}

// New creates a stub using PeakScorer. logger may be nil.
func New(logger *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{engine: gin.New(), logger: logger, scorer: PeakScorer}
	s.engine.Use(gin.Recovery())

	v1 := s.engine.Group("/v1")
	v1.POST("/predict", s.predict)
	v1.PUT("/train", s.submit)
	v1.POST("/train", s.start)
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Run(addr string) error { return s.engine.Run(addr) }

func (s *Server) SetScorer(fn Scorer) {
	s.mu.Lock()
	s.scorer = fn
	s.mu.Unlock()
}

// FailWith makes every endpoint answer with status.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// RespondRaw makes the predict endpoint answer with body verbatim.
func (s *Server) RespondRaw(body string) {
	s.mu.Lock()
	s.raw = body
	s.mu.Unlock()
}

// Calls returns a copy of the recorded requests.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo filters recorded requests by method and path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) record(c Call) (status int, raw string, scorer Scorer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return s.status, s.raw, s.scorer
}

func (s *Server) predict(c *gin.Context) {
	var req classifier.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request", "message": err.Error()})
		return
	}
	img, err := raster.DecodeDataURI(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to decode image", "message": err.Error()})
		return
	}

	status, raw, scorer := s.record(Call{Method: http.MethodPost, Path: c.FullPath(), Image: img, Expected: req.Expected})
	if status != 0 {
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	if raw != "" {
		c.Data(http.StatusOK, "application/json", []byte(raw))
		return
	}

	scores := scorer(img, req.Expected)
	resp := classifier.PredictResponse{
		Prediction:  argmax(scores),
		Expected:    req.Expected,
		Predictions: make(map[string]float64, classifier.Classes),
	}
	for i, v := range scores {
		resp.Predictions[strconv.Itoa(i)] = v
	}
	if req.Expected != nil {
		correct := *req.Expected == resp.Prediction
		resp.Correct = &correct
	}
	if s.logger != nil {
		s.logger.Debug("stub predict", "prediction", resp.Prediction, "expected", req.Expected)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) submit(c *gin.Context) {
	var req classifier.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request", "message": err.Error()})
		return
	}
	img, err := raster.DecodeDataURI(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to decode image", "message": err.Error()})
		return
	}

	expected, correct := req.Expected, req.Correct
	status, _, _ := s.record(Call{Method: http.MethodPut, Path: c.FullPath(), Image: img, Expected: &expected, Correct: &correct})
	if status != 0 {
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", []byte("stored"))
}

func (s *Server) start(c *gin.Context) {
	status, _, _ := s.record(Call{Method: http.MethodPost, Path: c.FullPath()})
	if status != 0 {
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", []byte("training"))
}

// PeakScorer favours the expected label, or 0 without one.
func PeakScorer(_ *raster.Image, expected *int) [classifier.Classes]float64 {
	peak := 0
	if expected != nil && *expected >= 0 && *expected < classifier.Classes {
		peak = *expected
	}
	return Peak(peak)
}

// FixedScorer always predicts digit.
func FixedScorer(digit int) Scorer {
	return func(*raster.Image, *int) [classifier.Classes]float64 { return Peak(digit) }
}

// Peak returns confidences concentrated on digit.
func Peak(digit int) [classifier.Classes]float64 {
	var out [classifier.Classes]float64
	for i := range out {
		out[i] = 0.01
	}
	out[digit] = 0.91
	return out
}

func argmax(v [classifier.Classes]float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
