package controller

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/lirany1/stress-insight/pkg/form"
	"github.com/lirany1/stress-insight/pkg/logger"
	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/renderer"
)

// ErrSubmissionPending is returned when a submit arrives while another is in flight
var ErrSubmissionPending = errors.New("a prediction is already in progress")

// Predictor sends a form payload to the prediction service
type Predictor interface {
	Submit(ctx context.Context, payload models.FormInput) (*models.PredictionResult, error)
}

// Controller handles one submission at a time: collect, predict, present
type Controller struct {
	predictor Predictor
	renderer  *renderer.Renderer
	guard     *semaphore.Weighted
}

// New creates a controller
func New(predictor Predictor, r *renderer.Renderer) *Controller {
	return &Controller{
		predictor: predictor,
		renderer:  r,
		guard:     semaphore.NewWeighted(1),
	}
}

// Renderer returns the renderer results are presented with
func (c *Controller) Renderer() *renderer.Renderer {
	return c.renderer
}

// HandleSubmit collects the form, requests a prediction and presents it. On
// failure the error is shown as a notice and the previous results stay put.
func (c *Controller) HandleSubmit(ctx context.Context, src form.Source) (*models.PredictionResult, error) {
	if !c.guard.TryAcquire(1) {
		c.renderer.Fail(ErrSubmissionPending)
		return nil, ErrSubmissionPending
	}
	defer c.guard.Release(1)

	payload := form.Collect(src)
	start := time.Now()

	result, err := c.predictor.Submit(ctx, payload)
	if err != nil {
		c.renderer.Fail(err)
		return nil, err
	}

	if err := c.renderer.Present(result); err != nil {
		c.renderer.Fail(err)
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"prediction": result.Prediction,
		"elapsed":    time.Since(start).String(),
	}).Info("Prediction presented")
	return result, nil
}
