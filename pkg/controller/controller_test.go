package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/stress-insight/pkg/advice"
	"github.com/lirany1/stress-insight/pkg/charts"
	"github.com/lirany1/stress-insight/pkg/client"
	"github.com/lirany1/stress-insight/pkg/display"
	"github.com/lirany1/stress-insight/pkg/form"
	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/renderer"
	"github.com/lirany1/stress-insight/pkg/themes"
)

type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Submit(ctx context.Context, payload models.FormInput) (*models.PredictionResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionResult), args.Error(1)
}

func newController(p Predictor) *Controller {
	r := renderer.New(display.NewSurface(), charts.NewManager(charts.NewEChartsFactory()),
		advice.NewEngine(), themes.NewManager("").Palette("default"))
	return New(p, r)
}

func sampleForm() form.Source {
	return form.FromMap(map[string]string{
		models.FieldAge:        "29",
		models.FieldSleepTime:  "Less than 4 hours",
		models.FieldWorkHours:  "9 - 10 hours",
		models.FieldGender:     "Female",
		models.FieldScreenTime: "4 - 6 hours",
	})
}

func highResult() *models.PredictionResult {
	return &models.PredictionResult{
		Prediction:        "High",
		FeatureImportance: models.Scores{{Name: "Sleep_Time_Code", Value: 0.3}},
		ImportanceByValue: models.Scores{
			{Name: "sleep_time", Value: 0.6},
			{Name: "work_hours", Value: 0.3},
			{Name: "social_support", Value: 0.1},
		},
		InputValues: map[string]string{
			"sleep_time":     "Less than 4 hours",
			"work_hours":     "9 - 10 hours",
			"social_support": "Strong",
		},
	}
}

func TestHandleSubmit_Success(t *testing.T) {
	p := &MockPredictor{}
	p.On("Submit", mock.Anything, mock.MatchedBy(func(in models.FormInput) bool {
		return len(in) == len(models.FieldNames) && in[models.FieldAge] == "29" && in[models.FieldMood] == ""
	})).Return(highResult(), nil).Once()

	c := newController(p)
	result, err := c.HandleSubmit(context.Background(), sampleForm())
	require.NoError(t, err)
	assert.Equal(t, "High", result.Prediction)

	s := c.Renderer().Surface()
	assert.True(t, s.Results.Visible)
	assert.Equal(t, "prediction-high", s.Label.Class)
	assert.Equal(t, []string{
		"Try to get more sleep (aim for 7-8 hours per night)",
		"Consider reducing work hours or taking regular breaks",
		advice.Fallbacks()[0],
	}, s.Recommendations.Bullets())
	assert.Empty(t, s.Notices())
	p.AssertExpectations(t)
}

func TestHandleSubmit_ServiceErrorKeepsPreviousResults(t *testing.T) {
	p := &MockPredictor{}
	p.On("Submit", mock.Anything, mock.Anything).Return(highResult(), nil).Once()
	p.On("Submit", mock.Anything, mock.Anything).Return(nil, &client.PredictionError{
		Kind:       client.ServiceError,
		Message:    "model unavailable",
		StatusCode: 500,
	}).Once()

	c := newController(p)
	_, err := c.HandleSubmit(context.Background(), sampleForm())
	require.NoError(t, err)

	s := c.Renderer().Surface()
	label := *s.Label
	bullets := s.Recommendations.Bullets()
	canvas := s.FeatureHost.Canvases()[0]

	_, err = c.HandleSubmit(context.Background(), sampleForm())
	var predErr *client.PredictionError
	require.ErrorAs(t, err, &predErr)
	assert.Equal(t, client.ServiceError, predErr.Kind)

	require.Len(t, s.Notices(), 1)
	assert.Contains(t, s.Notices()[0], "model unavailable")
	assert.Equal(t, label, *s.Label)
	assert.Equal(t, bullets, s.Recommendations.Bullets())
	assert.Same(t, canvas, s.FeatureHost.Canvases()[0])
	assert.True(t, canvas.Drawn())
}

func TestHandleSubmit_NetworkFailureRendersNothing(t *testing.T) {
	p := &MockPredictor{}
	p.On("Submit", mock.Anything, mock.Anything).Return(nil, &client.PredictionError{
		Kind: client.NetworkFailure,
		Err:  errors.New("connection refused"),
	}).Once()

	c := newController(p)
	_, err := c.HandleSubmit(context.Background(), sampleForm())
	require.Error(t, err)

	s := c.Renderer().Surface()
	assert.Equal(t, []string{"Error: connection refused"}, s.Notices())
	assert.False(t, s.Results.Visible)
	assert.Zero(t, s.FeatureHost.Len())
	assert.Zero(t, s.ProfileHost.Len())
	assert.Zero(t, s.Recommendations.Len())
}

// blockingPredictor holds every call until release is closed
type blockingPredictor struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingPredictor) Submit(ctx context.Context, payload models.FormInput) (*models.PredictionResult, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return &models.PredictionResult{Prediction: "Low"}, nil
}

func TestHandleSubmit_SecondSubmitWhilePending(t *testing.T) {
	p := &blockingPredictor{started: make(chan struct{}), release: make(chan struct{})}
	c := newController(p)

	done := make(chan error, 1)
	go func() {
		_, err := c.HandleSubmit(context.Background(), sampleForm())
		done <- err
	}()
	<-p.started

	_, err := c.HandleSubmit(context.Background(), sampleForm())
	assert.ErrorIs(t, err, ErrSubmissionPending)

	close(p.release)
	require.NoError(t, <-done)

	s := c.Renderer().Surface()
	assert.Equal(t, "prediction-low", s.Label.Class)

	_, err = c.HandleSubmit(context.Background(), sampleForm())
	assert.NoError(t, err, "guard is released after the first submit completes")
}
