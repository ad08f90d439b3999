package server

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// HostFuncInfo describes one served host function.
type HostFuncInfo struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeFault(w http.ResponseWriter, fault entities.HostFault) {
	writeJSON(w, fault.Code, fault)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListHostFuncs(w http.ResponseWriter, _ *http.Request) {
	names := s.registry.Names()
	infos := make([]HostFuncInfo, 0, len(names))
	for _, name := range names {
		info := HostFuncInfo{Name: name}
		if s.cfg.schemas != nil {
			if schema, ok := s.cfg.schemas.GetSchema(name); ok {
				info.Schema = schema
			}
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleInvoke passes the body to the named host function and relays its
// reply. Dispatch faults keep their own status code.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stdErrors.As(err, &tooLarge) {
			writeFault(w, entities.HostFault{
				Error:   "VALIDATION_ERROR",
				Message: fmt.Sprintf("payload exceeds %d bytes", s.cfg.maxBodySize),
				Code:    http.StatusRequestEntityTooLarge,
			})
			return
		}
		writeFault(w, entities.HostFault{Error: "VALIDATION_ERROR", Message: "failed to read payload", Code: http.StatusBadRequest})
		return
	}

	reply, err := s.registry.Invoke(r.Context(), name, payload)
	if err != nil {
		s.cfg.logger.Warn("host function invocation failed", "function", name, "error", err)
		writeFault(w, entities.HostFault{Error: "INTERNAL_ERROR", Message: err.Error(), Code: http.StatusInternalServerError})
		return
	}

	status := http.StatusOK
	if fault, ok := entities.ParseHostFault(reply); ok && fault.Code >= 400 && fault.Code < 600 {
		status = fault.Code
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(reply)
}

// handleConsoleStream forwards every console message to the WebSocket client
// until it disconnects.
func (s *Server) handleConsoleStream(w http.ResponseWriter, r *http.Request) {
	if s.console == nil {
		writeFault(w, entities.HostFault{Error: "NOT_FOUND", Message: "console stream not available", Code: http.StatusNotFound})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.logger.Warn("upgrading to websocket", "error", err)
		return
	}
	defer conn.Close()

	msgs, unsubscribe := s.console.Subscribe()
	defer unsubscribe()

	// The client never sends data frames; reading surfaces its close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(s.cfg.pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
