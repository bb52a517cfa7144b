// Package server exposes a buzzer session over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/mrdg/buzzer/audio"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Controller is the part of audio.Session the HTTP API drives.
type Controller interface {
	Notes() []string
	NoteOn(name string) bool
	NoteOff()
	SetWaveType(name string) bool
	SetOctave(n int) error
	SetVolume(v int) error
	Devices() []string
	SetDevice(name string) bool
	Status() audio.SessionStatus
	ClearError()
}

type Server struct {
	ctl    Controller
	logger *zap.Logger
	router chi.Router
}

func New(ctl Controller, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{ctl: ctl, logger: logger.Named("http")}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/notes", s.notes)
	r.Post("/notes/{name}/on", s.noteOn)
	r.Post("/off", s.noteOff)
	r.Put("/wave", s.setWave)
	r.Put("/octave", s.setOctave)
	r.Put("/volume", s.setVolume)
	r.Get("/devices", s.devices)
	r.Put("/device", s.setDevice)
	r.Get("/status", s.status)
	r.Delete("/error", s.clearError)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) notes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Notes())
}

func (s *Server) noteOn(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.ctl.NoteOn(name) {
		writeError(w, http.StatusNotFound, "unknown note: "+name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) noteOff(w http.ResponseWriter, r *http.Request) {
	s.ctl.NoteOff()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setWave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wave string `json:"wave"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !s.ctl.SetWaveType(req.Wave) {
		writeError(w, http.StatusBadRequest, "unknown waveform: "+req.Wave)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setOctave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Octave *int `json:"octave"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Octave == nil {
		writeError(w, http.StatusBadRequest, "octave is required")
		return
	}
	if err := s.ctl.SetOctave(*req.Octave); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume *int `json:"volume"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Volume == nil {
		writeError(w, http.StatusBadRequest, "volume is required")
		return
	}
	if err := s.ctl.SetVolume(*req.Volume); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) devices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Devices())
}

func (s *Server) setDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Device string `json:"device"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !s.ctl.SetDevice(req.Device) {
		writeError(w, http.StatusNotFound, "unknown device: "+req.Device)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Status())
}

func (s *Server) clearError(w http.ResponseWriter, r *http.Request) {
	s.ctl.ClearError()
	w.WriteHeader(http.StatusNoContent)
}
