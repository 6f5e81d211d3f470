package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8080"

const (
	predictPath = "/v1/predict"
	trainPath   = "/v1/train"

	maxErrorBody = 4 << 10
)

// Client talks to the classifier over HTTP.
type Client struct {
	url    *url.URL
	client *http.Client
}

var _ Service = (*Client)(nil)

// NewClient creates a client for baseURL. An empty baseURL selects
// DefaultBaseURL and a nil client selects http.DefaultClient.
func NewClient(baseURL string, client *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: unsupported scheme", baseURL)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &Client{url: u, client: client}, nil
}

// NewClientWithTimeout is NewClient with a dedicated http.Client bounded by
// timeout. A non-positive timeout means no limit.
func NewClientWithTimeout(baseURL string, timeout time.Duration) (*Client, error) {
	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return NewClient(baseURL, hc)
}

// BaseURL returns the resolved classifier origin.
func (c *Client) BaseURL() string { return c.url.String() }

func (c *Client) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	const op = "predict"

	body, err := c.do(ctx, op, http.MethodPost, predictPath, req)
	if err != nil {
		return nil, err
	}

	if err := ValidatePredictResponse(body); err != nil {
		return nil, err
	}

	var resp PredictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &MalformedResponseError{Reason: "decode response body", Err: err}
	}
	return &resp, nil
}

func (c *Client) SubmitTraining(ctx context.Context, req *TrainRequest) (*TrainResponse, error) {
	return c.train(ctx, "submit training", http.MethodPut, req)
}

func (c *Client) StartTraining(ctx context.Context) (*TrainResponse, error) {
	return c.train(ctx, "start training", http.MethodPost, nil)
}

func (c *Client) train(ctx context.Context, op, method string, payload any) (*TrainResponse, error) {
	request, err := c.newRequest(ctx, op, method, trainPath, payload)
	if err != nil {
		return nil, err
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer response.Body.Close()

	if err := checkStatus(op, response); err != nil {
		return nil, err
	}

	n, err := io.Copy(io.Discard, response.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}
	return &TrainResponse{ContentType: response.Header.Get("Content-Type"), Size: n}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	request, err := c.newRequest(ctx, op, method, path, payload)
	if err != nil {
		return nil, err
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer response.Body.Close()

	if err := checkStatus(op, response); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, op, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.url.JoinPath(path).String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	return request, nil
}

func checkStatus(op string, response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	resp, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	return &TransportError{Op: op, StatusCode: response.StatusCode, Body: string(resp)}
}
