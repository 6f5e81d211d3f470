package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{"prediction":7,"expected":7,"correct":true,
"predictions":{"0":0.01,"1":0.01,"2":0.01,"3":0.01,"4":0.01,"5":0.01,"6":0.01,"7":0.9,"8":0.02,"9":0.01}}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Same(t, http.DefaultClient, c.client)

	_, err = NewClient("ftp://example.com", nil)
	assert.Error(t, err)
}

func TestPredict(t *testing.T) {
	var got PredictRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, validBody)
	})

	expected := 7
	resp, err := c.Predict(context.Background(), &PredictRequest{Image: "data:image/png;base64,AA==", Expected: &expected})
	require.NoError(t, err)
	require.NotNil(t, got.Expected)
	assert.Equal(t, 7, *got.Expected)
	assert.Equal(t, "data:image/png;base64,AA==", got.Image)

	p, err := resp.Decode()
	require.NoError(t, err)
	assert.Equal(t, 7, p.Digit)
	assert.True(t, p.Correct)
	assert.InDelta(t, 0.9, p.Confidences[7], 1e-9)
	assert.InDelta(t, 0.02, p.Confidences[8], 1e-9)
}

func TestPredictSendsNullExpected(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		io.WriteString(w, validBody)
	})

	_, err := c.Predict(context.Background(), &PredictRequest{Image: "x"})
	require.NoError(t, err)
	v, ok := raw["expected"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestPredictTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	})

	_, err := c.Predict(context.Background(), &PredictRequest{Image: "x"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Contains(t, te.Body, "model not loaded")
	assert.Contains(t, err.Error(), "503")
}

func TestPredictConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(base, nil)
	require.NoError(t, err)
	_, err = c.Predict(context.Background(), &PredictRequest{Image: "x"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.Error(t, errors.Unwrap(err))
}

func TestPredictMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing predictions", `{"prediction":3}`},
		{"missing class", `{"prediction":3,"predictions":{"0":0.1,"1":0.1,"2":0.1,"3":0.1,"4":0.1,"5":0.1,"6":0.1,"7":0.1,"8":0.1}}`},
		{"prediction out of range", `{"prediction":12,"predictions":{"0":0,"1":0,"2":0,"3":0,"4":0,"5":0,"6":0,"7":0,"8":0,"9":0}}`},
		{"string confidence", `{"prediction":3,"predictions":{"0":"x","1":0,"2":0,"3":0,"4":0,"5":0,"6":0,"7":0,"8":0,"9":0}}`},
		{"bad correct", `{"prediction":3,"correct":"yes","predictions":{"0":0,"1":0,"2":0,"3":0,"4":0,"5":0,"6":0,"7":0,"8":0,"9":0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})
			_, err := c.Predict(context.Background(), &PredictRequest{Image: "x"})
			var me *MalformedResponseError
			assert.ErrorAs(t, err, &me)
		})
	}
}

func TestSubmitTraining(t *testing.T) {
	var got TrainRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/train", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(make([]byte, 128))
	})

	resp, err := c.SubmitTraining(context.Background(), &TrainRequest{Image: "img", Expected: 0, Correct: false})
	require.NoError(t, err)
	assert.Equal(t, int64(128), resp.Size)
	assert.Equal(t, "application/octet-stream", resp.ContentType)
	assert.Equal(t, TrainRequest{Image: "img", Expected: 0, Correct: false}, got)
}

func TestStartTraining(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/train", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.Empty(t, b)
		io.WriteString(w, "ok")
	})

	resp, err := c.StartTraining(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Size)
}

func TestStartTrainingFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.StartTraining(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "start training", te.Op)
}

func TestDecodeCorrectness(t *testing.T) {
	preds := map[string]float64{}
	for _, k := range []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"} {
		preds[k] = 0.1
	}
	zero, five := 0, 5
	yes := true

	tests := []struct {
		name string
		resp PredictResponse
		want bool
	}{
		{"no label", PredictResponse{Prediction: 0, Predictions: preds}, false},
		{"derived from zero label", PredictResponse{Prediction: 0, Expected: &zero, Predictions: preds}, true},
		{"derived mismatch", PredictResponse{Prediction: 0, Expected: &five, Predictions: preds}, false},
		{"server says", PredictResponse{Prediction: 0, Expected: &five, Correct: &yes, Predictions: preds}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.resp.Decode()
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Correct)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	te := &TransportError{Op: "predict", Err: errors.New("dial tcp: refused")}
	assert.Equal(t, "predict: dial tcp: refused", te.Error())

	me := &MalformedResponseError{Reason: "missing field"}
	assert.Equal(t, "malformed response: missing field", me.Error())
}
