// Package server exposes the stored resource collection over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/its-jojoo/otterboard/internal/adapter/storage/sqlite"
	"github.com/its-jojoo/otterboard/internal/core"
)

const maxBodyBytes = 32 << 20

// Store is the slice of sqlite.Store the handlers use.
type Store interface {
	ReplaceResources(ctx context.Context, userID int64, items []core.Item) error
	ListResources(ctx context.Context, userID int64) ([]core.Item, error)
	PutResource(ctx context.Context, userID int64, it core.Item) error
	Preferences(ctx context.Context, userID int64) (sqlite.Preferences, error)
	SavePreferences(ctx context.Context, userID int64, p sqlite.Preferences) error
}

var _ Store = (*sqlite.Store)(nil)

// Server serves one user's collection. There is no authentication; the user
// is fixed at construction.
type Server struct {
	store  Store
	userID int64
	log    *slog.Logger
	now    func() time.Time
	newID  func() string
}

func New(store Store, userID int64, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		store:  store,
		userID: userID,
		log:    log.With("component", "server"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/resources", s.handleResources)
	mux.HandleFunc("/api/capture", s.handleCapture)
	mux.HandleFunc("/api/preferences", s.handlePreferences)
	return mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type resourcesRequest struct {
	Resources []core.Item `json:"resources"`
}

type captureRequest struct {
	DataURL string `json:"dataUrl"`
}

type successResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.store.ListResources(r.Context(), s.userID)
		if err != nil {
			s.fail(w, "list resources", err)
			return
		}
		writeJSON(w, http.StatusOK, resourcesRequest{Resources: items})

	case http.MethodPost:
		var req resourcesRequest
		if !s.decode(w, r, &req) {
			return
		}
		if req.Resources == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "resources is required"})
			return
		}
		seen := make(map[string]struct{}, len(req.Resources))
		for _, it := range req.Resources {
			if err := core.Validate(it); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			if _, dup := seen[it.ID]; dup {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("duplicate id %s", it.ID)})
				return
			}
			seen[it.ID] = struct{}{}
		}
		if err := s.store.ReplaceResources(r.Context(), s.userID, req.Resources); err != nil {
			s.fail(w, "save resources", err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req captureRequest
	if !s.decode(w, r, &req) {
		return
	}
	mime, data, err := core.DecodeDataURL(req.DataURL)
	if err != nil || !core.IsImageMIME(mime) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "dataUrl must be a base64 image data url"})
		return
	}

	width, height := core.ImageDimensions(data)
	it := core.Item{
		ID:        s.newID(),
		Type:      core.TypeCapture,
		Content:   req.DataURL,
		Preview:   req.DataURL,
		Title:     core.TitleFor(core.TypeCapture, false),
		Timestamp: core.Millis(s.now()),
		IsPinned:  true,
		Metadata: core.Metadata{
			Source: core.SourceCapture,
			Image:  &core.ImageMeta{Width: width, Height: height, MimeType: mime},
		},
	}
	if err := s.store.PutResource(r.Context(), s.userID, it); err != nil {
		s.fail(w, "save capture", err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, ID: it.ID})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p, err := s.store.Preferences(r.Context(), s.userID)
		if err != nil {
			s.fail(w, "load preferences", err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPut, http.MethodPost:
		p, err := s.store.Preferences(r.Context(), s.userID)
		if err != nil {
			s.fail(w, "load preferences", err)
			return
		}
		// unspecified fields keep their stored values
		if !s.decode(w, r, &p) {
			return
		}
		if err := s.store.SavePreferences(r.Context(), s.userID, p); err != nil {
			s.fail(w, "save preferences", err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "empty body"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("Failed to %s", op)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
