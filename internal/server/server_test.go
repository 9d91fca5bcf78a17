package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/its-jojoo/otterboard/internal/adapter/storage/sqlite"
	"github.com/its-jojoo/otterboard/internal/core"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T) (*Server, *sqlite.Store, int64) {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	uid, err := st.EnsureUser(context.Background(), "local")
	if err != nil {
		t.Fatal(err)
	}
	return New(st, uid, quiet), st, uid
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestResources_ReplaceAndList(t *testing.T) {
	srv, st, uid := newTestServer(t)
	h := srv.Handler()

	body := `{"resources":[
		{"id":"a","type":"text","content":"hello","title":"Text Snippet","timestamp":2,"isPinned":false,"metadata":{"source":"clipboard"}},
		{"id":"b","type":"code","content":"const x = {}","title":"Code Snippet","timestamp":1,"isPinned":true,"metadata":{"source":"clipboard","language":"javascript"}}
	]}`
	rec := do(t, h, http.MethodPost, "/api/resources", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var ok successResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ok); err != nil || !ok.Success {
		t.Fatalf("unexpected body %s", rec.Body)
	}

	items, err := st.ListResources(context.Background(), uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].Metadata.Code == nil {
		t.Fatalf("unexpected stored items %+v", items)
	}

	rec = do(t, h, http.MethodGet, "/api/resources", "")
	var got resourcesRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Resources) != 2 || !got.Resources[1].IsPinned {
		t.Fatalf("unexpected listed items %+v", got.Resources)
	}
}

func TestResources_BadRequests(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	cases := map[string]string{
		"malformed": `{"resources":`,
		"empty":     ``,
		"missing":   `{}`,
		"invalid":   `{"resources":[{"id":"a","type":"video","content":"x","title":"t"}]}`,
		"duplicate": `{"resources":[{"id":"a","type":"text","content":"x","title":"t"},{"id":"a","type":"text","content":"y","title":"t"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/api/resources", body); rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}

	if rec := do(t, h, http.MethodDelete, "/api/resources", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestCapture_StoresPinnedCapture(t *testing.T) {
	srv, st, uid := newTestServer(t)
	h := srv.Handler()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 6, 4))); err != nil {
		t.Fatal(err)
	}
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	payload, _ := json.Marshal(captureRequest{DataURL: url})

	rec := do(t, h, http.MethodPost, "/api/capture", string(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp successResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.Success || resp.ID == "" {
		t.Fatalf("unexpected body %s", rec.Body)
	}

	items, _ := st.ListResources(context.Background(), uid)
	if len(items) != 1 {
		t.Fatalf("expected one stored capture, got %d", len(items))
	}
	it := items[0]
	if it.ID != resp.ID || it.Type != core.TypeCapture || !it.IsPinned || it.Source() != core.SourceCapture {
		t.Fatalf("unexpected capture %+v", it)
	}
	if it.Metadata.Image == nil || it.Metadata.Image.Width != 6 || it.Metadata.Image.Height != 4 {
		t.Fatalf("unexpected capture metadata %+v", it.Metadata)
	}

	if rec := do(t, h, http.MethodPost, "/api/capture", `{"dataUrl":"hello"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non data url, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/capture", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestPreferences_MergeUpdate(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/preferences", "")
	var p sqlite.Preferences
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil || !p.StylusSupport {
		t.Fatalf("expected defaults, got %s", rec.Body)
	}

	if rec := do(t, h, http.MethodPut, "/api/preferences", `{"stylusSupport":false}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/preferences", "")
	p = sqlite.Preferences{}
	_ = json.Unmarshal(rec.Body.Bytes(), &p)
	if p.StylusSupport || !p.ClipboardMonitoring {
		t.Fatalf("expected merged update, got %+v", p)
	}
}

type brokenStore struct{ Store }

var errBroken = errors.New("disk full")

func (brokenStore) ReplaceResources(context.Context, int64, []core.Item) error { return errBroken }
func (brokenStore) ListResources(context.Context, int64) ([]core.Item, error) {
	return nil, errBroken
}

func TestStoreFailuresAre500(t *testing.T) {
	h := New(brokenStore{}, 1, quiet).Handler()

	if rec := do(t, h, http.MethodPost, "/api/resources", `{"resources":[]}`); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/resources", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var e errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil || e.Error == "" {
		t.Fatalf("expected error body, got %s", rec.Body)
	}
}
