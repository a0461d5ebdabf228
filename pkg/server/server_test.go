package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/stress-insight/pkg/advice"
	"github.com/lirany1/stress-insight/pkg/charts"
	"github.com/lirany1/stress-insight/pkg/client"
	"github.com/lirany1/stress-insight/pkg/controller"
	"github.com/lirany1/stress-insight/pkg/display"
	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/renderer"
	"github.com/lirany1/stress-insight/pkg/themes"
)

const highBody = `{
	"prediction": "High",
	"feature_importance": {"Sleep_Time_Code": 0.3, "Work_Hours_Code": 0.2},
	"importance_by_value": {"sleep_time": 0.6, "work_hours": 0.3, "social_support": 0.1},
	"input_values": {"sleep_time": "Less than 4 hours", "work_hours": "9 - 10 hours", "social_support": "Strong"}
}`

func newTestServer(t *testing.T, predict http.HandlerFunc) *httptest.Server {
	t.Helper()

	backend := httptest.NewServer(predict)
	t.Cleanup(backend.Close)

	palette := themes.NewManager("").Palette("default")
	r := renderer.New(display.NewSurface(), charts.NewManager(charts.NewEChartsFactory()), advice.NewEngine(), palette)
	c := controller.New(client.New(backend.URL), r)

	srv := NewServer(&Config{
		Addr:        "localhost:0",
		FormOptions: map[string][]string{models.FieldSleepTime: {"Less than 4 hours", "7 - 8 hours"}},
		Palette:     palette,
	}, c)

	front := httptest.NewServer(srv.Handler())
	t.Cleanup(front.Close)
	return front
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func submitValues() url.Values {
	values := url.Values{}
	values.Set(models.FieldAge, "29")
	values.Set(models.FieldSleepTime, "Less than 4 hours")
	values.Set(models.FieldWorkHours, "9 - 10 hours")
	return values
}

func TestServer_PageBeforeSubmit(t *testing.T) {
	front := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("prediction service must not be called")
	})

	resp, err := http.Get(front.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	html := readBody(t, resp)
	assert.Contains(t, html, `id="predictionForm"`)
	assert.Contains(t, html, `style="display: none;"`)
}

func TestServer_SubmitPresentsResults(t *testing.T) {
	front := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(highBody))
	})

	resp, err := http.PostForm(front.URL+"/submit", submitValues())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	html := readBody(t, resp)
	assert.Contains(t, html, "Predicted Stress Level: High")
	assert.Contains(t, html, "prediction-high")
	assert.Contains(t, html, "Try to get more sleep (aim for 7-8 hours per night)")
	assert.Contains(t, html, "Consider reducing work hours or taking regular breaks")
	assert.Contains(t, html, `<option value="Less than 4 hours" selected>`)
	assert.Contains(t, html, `name="age" value="29"`)
	assert.NotContains(t, html, "alert(")

	// a reload shows the same results
	resp, err = http.Get(front.URL + "/")
	require.NoError(t, err)
	html = readBody(t, resp)
	assert.Contains(t, html, "Predicted Stress Level: High")
	assert.Equal(t, 2, strings.Count(html, "echarts.init("), "one chart per slot")
}

func TestServer_ServiceErrorShowsNotice(t *testing.T) {
	front := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model unavailable"}`))
	})

	resp, err := http.PostForm(front.URL+"/submit", submitValues())
	require.NoError(t, err)
	html := readBody(t, resp)

	assert.Contains(t, html, "alert(")
	assert.Contains(t, html, "Error: model unavailable")
	assert.Contains(t, html, `style="display: none;"`)

	// the notice is shown once
	resp, err = http.Get(front.URL + "/")
	require.NoError(t, err)
	assert.NotContains(t, readBody(t, resp), "alert(")
}

func TestServer_PageStaysLiveWhilePredictionPending(t *testing.T) {
	var calls int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	defer unblock()

	front := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(highBody))
	})

	firstPage := make(chan string, 1)
	go func() {
		resp, err := http.PostForm(front.URL+"/submit", submitValues())
		if err != nil {
			firstPage <- err.Error()
			return
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		firstPage <- string(data)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("prediction service was not called")
	}

	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(front.URL + "/")
	require.NoError(t, err, "page must answer while a prediction is pending")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `id="predictionForm"`)

	resp, err = client.PostForm(front.URL+"/submit", submitValues())
	require.NoError(t, err, "a second submit must not queue behind the first")
	html := readBody(t, resp)
	assert.Contains(t, html, "Error: a prediction is already in progress")
	assert.Contains(t, html, `style="display: none;"`)

	unblock()
	select {
	case html = <-firstPage:
	case <-time.After(5 * time.Second):
		t.Fatal("first submit did not finish")
	}
	assert.Contains(t, html, "Predicted Stress Level: High")
	assert.NotContains(t, html, "alert(", "the rejected submit's notice was already shown")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "only one prediction reaches the service")
}

func TestServer_Health(t *testing.T) {
	front := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := http.Get(front.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))
}

func TestServer_SubmitRequiresPost(t *testing.T) {
	front := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := http.Get(front.URL + "/submit")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
