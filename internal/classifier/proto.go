package classifier

import (
	"context"
	"fmt"
	"strconv"
)

// Classes is the number of digit classes.
const Classes = 10

// Service is the remote classifier contract.
type Service interface {
	// Predict classifies an image, optionally judged against an expected label.
	Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error)
	// SubmitTraining stores a labelled example.
	SubmitTraining(ctx context.Context, req *TrainRequest) (*TrainResponse, error)
	// StartTraining triggers an out-of-band training pass.
	StartTraining(ctx context.Context) (*TrainResponse, error)
}

type PredictRequest struct {
	Image    string `json:"image"`    // PNG data URI
	Expected *int   `json:"expected"` // null when no label is selected
}

type PredictResponse struct {
	Prediction  int                `json:"prediction"`
	Expected    *int               `json:"expected"`
	Correct     *bool              `json:"correct"`
	Predictions map[string]float64 `json:"predictions"` // "0".."9" -> confidence
}

type TrainRequest struct {
	Image    string `json:"image"`
	Expected int    `json:"expected"`
	Correct  bool   `json:"correct"`
}

// TrainResponse carries the opaque body returned by the training endpoints.
type TrainResponse struct {
	ContentType string
	Size        int64
}

// Prediction is a decoded predict response, confidences in class order.
type Prediction struct {
	Digit       int
	Confidences [Classes]float64
	Correct     bool
	Expected    *int
}

// Decode converts a raw response into a Prediction. Missing classes are
// reported as malformed. When the server leaves correct null but an
// expected label is present, correctness is derived from the labels.
func (r *PredictResponse) Decode() (*Prediction, error) {
	if r.Prediction < 0 || r.Prediction >= Classes {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("prediction %d out of range", r.Prediction)}
	}
	p := &Prediction{Digit: r.Prediction, Expected: r.Expected}
	for i := 0; i < Classes; i++ {
		v, ok := r.Predictions[strconv.Itoa(i)]
		if !ok {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("missing confidence for class %d", i)}
		}
		p.Confidences[i] = v
	}
	switch {
	case r.Correct != nil:
		p.Correct = *r.Correct
	case r.Expected != nil:
		p.Correct = *r.Expected == r.Prediction
	}
	return p, nil
}
