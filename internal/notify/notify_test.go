package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifyPostsContentBody(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	require.NoError(t, wh.Notify("task t1 is blocked"))
	assert.Equal(t, "task t1 is blocked", received["content"])
}

func TestWebhookNotifyIsNoOpWithoutURL(t *testing.T) {
	wh := NewWebhook("")
	assert.NoError(t, wh.Notify("anything"))
}

type fakeNotifier struct {
	calls []string
	err   error
}

func (f *fakeNotifier) Notify(message string) error {
	f.calls = append(f.calls, message)
	return f.err
}

func TestMultiFansOutToEverySink(t *testing.T) {
	a := &fakeNotifier{}
	b := &fakeNotifier{}
	m := Multi{Sinks: []Notifier{a, b}}

	require.NoError(t, m.Notify("hello"))
	assert.Equal(t, []string{"hello"}, a.calls)
	assert.Equal(t, []string{"hello"}, b.calls)
}

func TestMultiSkipsNilSinksAndReturnsFirstError(t *testing.T) {
	boom := assertErr("boom")
	a := &fakeNotifier{err: boom}
	b := &fakeNotifier{}
	m := Multi{Sinks: []Notifier{nil, a, b}}

	err := m.Notify("hello")
	assert.Equal(t, boom, err)
	assert.Equal(t, []string{"hello"}, b.calls)
}

type stringErr string

func (e stringErr) Error() string { return string(e) }

func assertErr(msg string) error { return stringErr(msg) }
