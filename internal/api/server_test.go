package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
)

type fakeSource struct {
	attached bool
	count    int
}

func (s *fakeSource) Attached() bool { return s.attached }

func (s *fakeSource) Load() (dictionary.Collection, []int) {
	collection := dictionary.Collection{}
	for i := 0; i < s.count; i++ {
		collection[string(rune('a'+i))] = dictionary.RawPage{}
	}
	return collection, nil
}

type fakeWords struct {
	countErr error
	count    int
	entries  map[int]*dictionary.Entry
	flags    map[int][3]bool
}

func (w *fakeWords) Count(context.Context) (int, error) {
	return w.count, w.countErr
}

func (w *fakeWords) GetByIndex(_ context.Context, index int) (*dictionary.Entry, error) {
	entry, ok := w.entries[index]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return entry, nil
}

func (w *fakeWords) UpdateFlags(_ context.Context, index int, favourite, toLearn, known bool) error {
	if _, ok := w.entries[index]; !ok {
		return errors.New("no such entry")
	}
	if w.flags == nil {
		w.flags = map[int][3]bool{}
	}
	w.flags[index] = [3]bool{favourite, toLearn, known}
	return nil
}

func newTestServer(source *fakeSource, words *fakeWords) *httptest.Server {
	s := NewServer(source, words, zap.NewNop())
	return httptest.NewServer(s.Handler())
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeSource{}, &fakeWords{})
	defer ts.Close()

	status, payload := getJSON(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", payload["status"])
}

func TestReadyzReportsDatabaseOutage(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeSource{}, &fakeWords{countErr: errors.New("connection refused")})
	defer ts.Close()

	status, payload := getJSON(t, ts.URL+"/readyz")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "database unreachable", payload["error"])
}

func TestStatuszReportsSyncState(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeSource{attached: true, count: 5}, &fakeWords{count: 3})
	defer ts.Close()

	status, payload := getJSON(t, ts.URL+"/statusz")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Async", payload["collection_status"])
	require.Equal(t, "Async", payload["database_status"])
}

func TestGetWord(t *testing.T) {
	t.Parallel()

	words := &fakeWords{
		count: 1,
		entries: map[int]*dictionary.Entry{
			17: {
				Index: 17,
				EN: dictionary.LocaleFields{
					Translation:   "to write",
					Transcription: "likhtov",
					WordType:      "Verb",
					SearchTokens:  []string{"to write"},
				},
			},
		},
	}
	ts := newTestServer(&fakeSource{}, words)
	defer ts.Close()

	status, payload := getJSON(t, ts.URL+"/v1/words/17")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(17), payload["index"])
	locales := payload["locales"].(map[string]any)
	en := locales["en"].(map[string]any)
	require.Equal(t, "to write", en["translation"])
	require.Equal(t, "likhtov", en["transcription"])

	status, _ = getJSON(t, ts.URL+"/v1/words/99")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = getJSON(t, ts.URL+"/v1/words/zero")
	require.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateWordFlags(t *testing.T) {
	t.Parallel()

	words := &fakeWords{
		entries: map[int]*dictionary.Entry{17: {Index: 17}},
	}
	ts := newTestServer(&fakeSource{}, words)
	defer ts.Close()

	resp, err := http.Post(
		ts.URL+"/v1/words/17/flags",
		"application/json",
		strings.NewReader(`{"favourite":true,"to_learn":true,"known":false}`),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, [3]bool{true, true, false}, words.flags[17])

	resp, err = http.Post(ts.URL+"/v1/words/99/flags", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeSource{}, &fakeWords{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
