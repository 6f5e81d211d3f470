package classifierstub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digitpad/internal/classifier"
	"digitpad/internal/raster"
)

func dataURI(t *testing.T) string {
	t.Helper()
	img, err := raster.New(28, 28)
	require.NoError(t, err)
	uri, err := img.DataURI()
	require.NoError(t, err)
	return uri
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPredict(t *testing.T) {
	s := New(nil)
	expected := 4
	rec := do(t, s, http.MethodPost, "/v1/predict", classifier.PredictRequest{Image: dataURI(t), Expected: &expected})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, classifier.ValidatePredictResponse(rec.Body.Bytes()))
	var resp classifier.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Prediction)
	require.NotNil(t, resp.Correct)
	assert.True(t, *resp.Correct)

	calls := s.CallsTo(http.MethodPost, "/v1/predict")
	require.Len(t, calls, 1)
	assert.Equal(t, 28, calls[0].Image.Width)
}

func TestPredictWithoutExpected(t *testing.T) {
	s := New(nil)
	s.SetScorer(FixedScorer(6))
	rec := do(t, s, http.MethodPost, "/v1/predict", classifier.PredictRequest{Image: dataURI(t)})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp classifier.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Prediction)
	assert.Nil(t, resp.Expected)
	assert.Nil(t, resp.Correct)
}

func TestBadImage(t *testing.T) {
	s := New(nil)
	rec := do(t, s, http.MethodPost, "/v1/predict", classifier.PredictRequest{Image: "not a data uri"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to decode image")
	assert.Empty(t, s.Calls())
}

func TestTrainEndpoints(t *testing.T) {
	s := New(nil)
	rec := do(t, s, http.MethodPut, "/v1/train", classifier.TrainRequest{Image: dataURI(t), Expected: 0, Correct: false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/train", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	submits := s.CallsTo(http.MethodPut, "/v1/train")
	require.Len(t, submits, 1)
	assert.Equal(t, 0, *submits[0].Expected)
	assert.False(t, *submits[0].Correct)
	assert.Len(t, s.CallsTo(http.MethodPost, "/v1/train"), 1)
}

func TestFailWith(t *testing.T) {
	s := New(nil)
	s.FailWith(http.StatusServiceUnavailable)
	rec := do(t, s, http.MethodPost, "/v1/train", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Len(t, s.Calls(), 1)
}

func TestPeak(t *testing.T) {
	scores := Peak(3)
	assert.Equal(t, 3, argmax(scores))
	assert.Equal(t, 0, argmax(PeakScorer(nil, nil)))
	nine := 9
	assert.Equal(t, 9, argmax(PeakScorer(nil, &nine)))
}
