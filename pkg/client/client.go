package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/lirany1/stress-insight/pkg/logger"
	"github.com/lirany1/stress-insight/pkg/models"
)

// PredictPath is the fixed path of the prediction endpoint
const PredictPath = "/predict"

// DefaultErrorMessage is shown when the service gives no usable message
const DefaultErrorMessage = "Prediction failed"

// ErrorKind classifies a failed prediction
type ErrorKind string

const (
	// NetworkFailure means no response was received
	NetworkFailure ErrorKind = "network_failure"
	// ServiceError covers failure statuses and unusable response bodies
	ServiceError ErrorKind = "service_error"
)

// ErrMalformedResponse marks a success response whose body could not be parsed
var ErrMalformedResponse = errors.New("malformed prediction response")

// PredictionError is returned by Submit for every failure
type PredictionError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *PredictionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return DefaultErrorMessage
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client submits form snapshots to the prediction service
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a client for the service at baseURL. If baseURL already ends in
// the predict path it is used unchanged.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpointFor(baseURL),
		http:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full URL requests are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit sends one prediction request. There are no retries; the call returns
// when a response arrives, the transport fails, or ctx is done.
func (c *Client) Submit(ctx context.Context, payload models.FormInput) (*models.PredictionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := logger.WithFields(logrus.Fields{"request_id": requestID, "endpoint": c.endpoint})
	log.Debug("Submitting prediction request")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnf("Prediction request failed: %v", err)
		return nil, &PredictionError{Kind: NetworkFailure, Message: err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warnf("Reading prediction response failed: %v", err)
		return nil, &PredictionError{Kind: NetworkFailure, Message: err.Error(), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := serviceMessage(data)
		log.WithField("status", resp.StatusCode).Warnf("Prediction service returned an error: %s", message)
		return nil, &PredictionError{Kind: ServiceError, Message: message, StatusCode: resp.StatusCode}
	}

	result, err := parseResult(data)
	if err != nil {
		log.Warnf("Prediction response rejected: %v", err)
		return nil, &PredictionError{Kind: ServiceError, Message: err.Error(), StatusCode: resp.StatusCode, Err: err}
	}

	log.WithField("prediction", result.Prediction).Debug("Prediction received")
	return result, nil
}

// serviceMessage extracts the "error" field of a failure body
func serviceMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return DefaultErrorMessage
	}
	message := strings.TrimSpace(gjson.GetBytes(body, "error").String())
	if message == "" {
		return DefaultErrorMessage
	}
	return message
}

// parseResult walks the success document. gjson iterates object members in
// document order, which the score lists depend on.
func parseResult(body []byte) (*models.PredictionResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrMalformedResponse)
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	prediction := doc.Get("prediction")
	if prediction.Type != gjson.String || strings.TrimSpace(prediction.String()) == "" {
		return nil, fmt.Errorf("%w: missing prediction", ErrMalformedResponse)
	}

	importance, err := parseScores(doc.Get("feature_importance"), "feature_importance")
	if err != nil {
		return nil, err
	}

	byValue, err := parseScores(doc.Get("importance_by_value"), "importance_by_value")
	if err != nil {
		return nil, err
	}

	inputs, err := parseInputs(doc.Get("input_values"))
	if err != nil {
		return nil, err
	}

	return &models.PredictionResult{
		Prediction:        prediction.String(),
		FeatureImportance: importance,
		ImportanceByValue: byValue,
		InputValues:       inputs,
	}, nil
}

func parseScores(node gjson.Result, field string) (models.Scores, error) {
	scores := make(models.Scores, 0)
	if !node.Exists() || node.Type == gjson.Null {
		return scores, nil
	}
	if !node.IsObject() {
		return nil, fmt.Errorf("%w: %s must be an object", ErrMalformedResponse, field)
	}

	var walkErr error
	node.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			walkErr = fmt.Errorf("%w: %s.%s is not a number", ErrMalformedResponse, field, key.String())
			return false
		}
		scores = append(scores, models.FeatureScore{Name: key.String(), Value: value.Float()})
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return scores, nil
}

func parseInputs(node gjson.Result) (map[string]string, error) {
	inputs := make(map[string]string)
	if !node.Exists() || node.Type == gjson.Null {
		return inputs, nil
	}
	if !node.IsObject() {
		return nil, fmt.Errorf("%w: input_values must be an object", ErrMalformedResponse)
	}
	node.ForEach(func(key, value gjson.Result) bool {
		inputs[key.String()] = value.String()
		return true
	})
	return inputs, nil
}

func endpointFor(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(base, PredictPath) {
		return base
	}
	return base + PredictPath
}
