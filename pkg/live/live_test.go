package live

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/pkg/compiler"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/metrics"
)

const counterTemplate = `<div><p>{{ count }}</p><button @click="inc">+</button><input v-model="name"><span>{{ name }}</span></div>`

func counterFactory(t *testing.T) Factory {
	t.Helper()
	return func(surface compiler.Surface) (*vbind.Instance, error) {
		frag, err := dom.ParseString(counterTemplate)
		if err != nil {
			return nil, err
		}
		return vbind.New(vbind.Options{
			El:   frag.Children[0],
			Data: map[string]any{"count": 0, "name": ""},
			Methods: map[string]vbind.Method{
				"inc": func(vm *vbind.Instance, _ dom.Event) error {
					v, _ := vm.Get("count")
					return vm.Set("count", v.(int)+1)
				},
			},
			Surface: surface,
		})
	}
}

func TestSessionHandle(t *testing.T) {
	s, err := newSession("s1", counterFactory(t), time.Now())
	require.NoError(t, err)

	patches, err := s.Handle(Frame{Type: FrameEvent, ID: "n3", Event: "click"})
	require.NoError(t, err)
	assert.Equal(t, []dom.Patch{{Op: dom.OpHTML, ID: "n2", Value: "1"}}, patches)

	patches, err = s.Handle(Frame{Type: FrameInput, ID: "n4", Value: "bob"})
	require.NoError(t, err)
	assert.Equal(t, []dom.Patch{
		{Op: dom.OpValue, ID: "n4", Value: "bob"},
		{Op: dom.OpHTML, ID: "n5", Value: "bob"},
	}, patches)

	v, ok := s.Instance().Get("name")
	require.True(t, ok)
	assert.Equal(t, "bob", v)
}

func TestSessionHandleErrors(t *testing.T) {
	s, err := newSession("s1", counterFactory(t), time.Now())
	require.NoError(t, err)

	_, err = s.Handle(Frame{Type: FrameEvent, ID: "n99", Event: "click"})
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = s.Handle(Frame{Type: "scroll", ID: "n3"})
	assert.ErrorIs(t, err, ErrUnknownFrame)

	_, err = s.Handle(Frame{Type: FrameEvent, ID: "n3"})
	assert.ErrorIs(t, err, ErrUnknownFrame)

	patches, err := s.Handle(Frame{Type: FrameEvent, ID: "n2", Event: "click"})
	require.NoError(t, err, "nodes without listeners ignore events")
	assert.Empty(t, patches)
}

func TestSessionListenersAndRender(t *testing.T) {
	s, err := newSession("s1", counterFactory(t), time.Now())
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"n3": {"click"},
		"n4": {"input"},
	}, s.Listeners())

	var b strings.Builder
	require.NoError(t, s.Render(&b))
	assert.Equal(t,
		`<div data-vb="n1"><p data-vb="n2">0</p><button data-vb="n3">+</button><input value data-vb="n4"><span data-vb="n5"></span></div>`,
		b.String())
}

func TestManagerSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(metrics.WithRegistry(reg))
	m := NewManager(counterFactory(t), c, nil)

	idle, err := m.Create()
	require.NoError(t, err)
	attached, err := m.Create()
	require.NoError(t, err)
	require.True(t, attached.setConnected(true))
	assert.False(t, attached.setConnected(true), "second attach is refused")
	assert.Equal(t, 2.0, gaugeValue(t, reg, "vbind_active_sessions"))

	assert.Equal(t, 0, m.Sweep(time.Now(), time.Hour))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(2*time.Hour), time.Hour))
	assert.Nil(t, m.Get(idle.ID))
	assert.NotNil(t, m.Get(attached.ID))
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 1.0, gaugeValue(t, reg, "vbind_active_sessions"))

	m.Close(attached.ID)
	m.Close(attached.ID)
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0.0, gaugeValue(t, reg, "vbind_active_sessions"))
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestNewRequiresFactory(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoFactory)
}

var sessionPattern = regexp.MustCompile(`"session":"([^"]+)"`)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	srv, err := New(Config{
		Factory:     counterFactory(t),
		Title:       "Counter <demo>",
		MetricsPath: "/metrics",
		Gatherer:    reg,
		Metrics:     metrics.New(metrics.WithRegistry(reg)),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts, reg
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestPage(t *testing.T) {
	srv, ts, _ := newTestServer(t)

	status, body := getBody(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>Counter &lt;demo&gt;</title>")
	assert.Contains(t, body, `<p data-vb="n2">0</p>`)
	assert.Contains(t, body, `"listeners":{"n3":["click"],"n4":["input"]}`)
	assert.Contains(t, body, "new WebSocket")

	match := sessionPattern.FindStringSubmatch(body)
	require.Len(t, match, 2)
	assert.NotNil(t, srv.Sessions().Get(match[1]))
}

func TestWebSocketRoundTrip(t *testing.T) {
	srv, ts, reg := newTestServer(t)

	_, body := getBody(t, ts.URL+"/")
	id := sessionPattern.FindStringSubmatch(body)[1]

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	roundTrip := func(f Frame) []dom.Patch {
		t.Helper()
		require.NoError(t, conn.WriteJSON(f))
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var patches []dom.Patch
		require.NoError(t, conn.ReadJSON(&patches))
		return patches
	}

	assert.Equal(t, []dom.Patch{{Op: dom.OpHTML, ID: "n2", Value: "1"}},
		roundTrip(Frame{Type: FrameEvent, ID: "n3", Event: "click"}))
	assert.Equal(t, []dom.Patch{
		{Op: dom.OpValue, ID: "n4", Value: "hi"},
		{Op: dom.OpHTML, ID: "n5", Value: "hi"},
	}, roundTrip(Frame{Type: FrameInput, ID: "n4", Value: "hi"}))
	assert.Empty(t, roundTrip(Frame{Type: FrameEvent, ID: "missing", Event: "click"}))

	// A second socket for the same session is refused.
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	n, err := testutil.GatherAndCount(reg, "vbind_events_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "click/ok, input/ok, click/error")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return srv.Sessions().Get(id) == nil },
		2*time.Second, 10*time.Millisecond)
}

func TestWebSocketUnknownSession(t *testing.T) {
	_, ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts, _ := newTestServer(t)

	getBody(t, ts.URL+"/")

	status, body := getBody(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, status)
	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, 1.0, health["sessions"])

	status, body = getBody(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "vbind_active_sessions 1")
}
