package store_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/draintech/drainwatch/internal/store"
	"go.uber.org/zap"
)

func TestClientGet_QueryParams(t *testing.T) {
	var gotPath, gotOrderBy, gotLimit, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOrderBy = r.URL.Query().Get("orderBy")
		gotLimit = r.URL.Query().Get("limitToLast")
		gotAuth = r.URL.Query().Get("auth")
		io.WriteString(w, `{"a": {"flow": 1.5}}`)
	}))
	defer server.Close()

	client := store.NewClient(server.URL, "secret", zap.NewNop())
	v, err := client.Get(context.Background(), "historial/aa:bb:cc:dd:ee:ff", store.Query{
		OrderBy:     "timestamp",
		LimitToLast: 10,
	})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if gotPath != "/historial/aa:bb:cc:dd:ee:ff.json" {
		t.Errorf("path = %s", gotPath)
	}
	if gotOrderBy != `"timestamp"` {
		t.Errorf("orderBy = %s, want quoted timestamp", gotOrderBy)
	}
	if gotLimit != "10" {
		t.Errorf("limitToLast = %s, want 10", gotLimit)
	}
	if gotAuth != "secret" {
		t.Errorf("auth = %s, want secret", gotAuth)
	}
	if got := v.Field("a").Field("flow").Float(); got != 1.5 {
		t.Errorf("decoded flow = %v, want 1.5", got)
	}
}

func TestClientSet_PutsJSON(t *testing.T) {
	var gotMethod string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, "true")
	}))
	defer server.Close()

	client := store.NewClient(server.URL, "", zap.NewNop())
	if err := client.Set(context.Background(), "control/mac/recordingOpen", true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if string(gotBody) != "true" {
		t.Errorf("body = %s, want true", gotBody)
	}
}

func TestClientPush_ReturnsGeneratedKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		io.WriteString(w, `{"name": "-NabcKey"}`)
	}))
	defer server.Close()

	client := store.NewClient(server.URL, "", zap.NewNop())
	key, err := client.Push(context.Background(), "historial/mac", map[string]interface{}{"flow": 1.0})
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if key != "-NabcKey" {
		t.Errorf("key = %s, want -NabcKey", key)
	}
}

func TestClientGet_SurfacesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": "Permission denied"}`)
	}))
	defer server.Close()

	client := store.NewClient(server.URL, "", zap.NewNop())
	_, err := client.Get(context.Background(), "historial/mac", store.Query{})
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "Permission denied"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention %q", err, want)
	}
}

func TestClientSubscribe_PutAndPatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %s", r.Header.Get("Accept"))
		}
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")

		io.WriteString(w, "event: put\ndata: {\"path\":\"/\",\"data\":{\"recordingOpen\":true,\"mode\":1}}\n\n")
		flusher.Flush()
		io.WriteString(w, "event: keep-alive\ndata: null\n\n")
		flusher.Flush()
		io.WriteString(w, "event: patch\ndata: {\"path\":\"/\",\"data\":{\"recordingOpen\":false}}\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	client := store.NewClient(server.URL, "", zap.NewNop())
	sub, err := client.Subscribe(context.Background(), "control/mac", store.Query{})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	first := waitEvent(t, sub)
	if !first.Value.Field("recordingOpen").Bool() {
		t.Error("expected recordingOpen true after put")
	}

	second := waitEvent(t, sub)
	if second.Value.Field("recordingOpen").Bool() {
		t.Error("expected recordingOpen false after patch")
	}
	// patch must merge, not replace
	if got := second.Value.Field("mode").Float(); got != 1 {
		t.Errorf("mode = %v, want 1 after patch merge", got)
	}
}

func TestClientSubscribe_ServerRevocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "event: cancel\ndata: null\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	client := store.NewClient(server.URL, "", zap.NewNop())
	sub, err := client.Subscribe(context.Background(), "control/mac", store.Query{})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	select {
	case err := <-sub.Errors():
		if err == nil {
			t.Error("expected non-nil revocation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for revocation error")
	}
}

func waitEvent(t *testing.T, sub store.Subscription) store.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case err := <-sub.Errors():
		t.Fatalf("subscription error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return store.Event{}
}
