package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/kernel"
	"github.com/tailored-agentic-units/gichat/prompt"
)

const (
	title    = "🏥 GI Emergency Care"
	subtitle = "Assistant IA spécialisé pour médecins - Aide au diagnostic et à la prise en charge en gastro-entérologie"

	busyNotice      = "Une réponse est déjà en cours de génération. Veuillez patienter."
	clearBusyNotice = "Impossible d'effacer la conversation pendant la génération d'une réponse."
	limitNotice     = "Trop de questions en peu de temps. Veuillez patienter une minute."
	failurePrefix   = "❌ Erreur lors de la génération de la réponse : "
)

var examples = []string{
	"Diagnostic différentiel d'une douleur abdominale épigastrique",
	"Protocole de prise en charge d'une hépatite C",
	"Indications de coloscopie pour un patient de 55 ans",
	"Traitement d'une maladie de Crohn active",
	"Interprétation d'une élévation des transaminases",
	"Conduite à tenir devant une ascite",
}

type pageData struct {
	Title    string
	Subtitle string
	Logo     bool
	Examples []string
	Turns    []turnView
	Notice   string
	Busy     bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	data := pageData{
		Title:    title,
		Subtitle: subtitle,
		Logo:     s.cfg.LogoPath != "",
		Examples: examples,
		Turns:    renderTurns(sess.Messages()),
		Busy:     s.kernel.Busy(sess),
	}
	if notice, ok := s.flash.LoadAndDelete(sess.ID()); ok {
		data.Notice = notice.(string)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	streaming := wantsStream(r)

	if !s.limiter.allow(clientKey(r, s.cfg.ClientHeader)) {
		http.Error(w, limitNotice, http.StatusTooManyRequests)
		return
	}

	sess := s.session(w, r)
	ex, err := s.kernel.Submit(r.Context(), sess, r.FormValue("question"))
	switch {
	case errors.Is(err, kernel.ErrEmptyQuestion):
		if streaming {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case errors.Is(err, kernel.ErrBusy):
		http.Error(w, busyNotice, http.StatusConflict)
		return
	case err != nil:
		s.logger.Error("submit", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer ex.Commit()

	flusher, ok := w.(http.Flusher)
	if !streaming || !ok {
		result := ex.Commit()
		if !result.OK() {
			s.flash.Store(sess.ID(), failurePrefix+result.Detail())
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ex.Next() {
		writeEvent(w, "fragment", map[string]string{"display": ex.Display()})
		flusher.Flush()
	}

	result := ex.Commit()
	if result.OK() {
		writeEvent(w, "done", map[string]string{
			"content": result.Content,
			"html":    string(renderMarkdown(result.Content)),
		})
	} else {
		writeEvent(w, "notice", map[string]string{
			"error":   failurePrefix + result.Detail(),
			"content": prompt.Apology,
			"html":    string(renderMarkdown(prompt.Apology)),
		})
	}
	flusher.Flush()
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if s.kernel.Busy(sess) {
		http.Error(w, clearBusyNotice, http.StatusConflict)
		return
	}
	sess.Clear()
	s.flash.Delete(sess.ID())

	if r.Header.Get("X-Requested-With") == "fetch" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type historyResponse struct {
	Session  string             `json:"session"`
	Messages []protocol.Message `json:"messages"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, historyResponse{Session: sess.ID(), Messages: sess.Messages()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "healthy",
		"sessions": s.sessions.Len(),
		"agents":   s.kernel.Agents(),
	})
}

func (s *Server) handleLogo(w http.ResponseWriter, r *http.Request) {
	if s.cfg.LogoPath == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.cfg.LogoPath)
}

func wantsStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func writeEvent(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
