package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Multi-language runner + exam rooms"))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type languageInfo struct {
	Key       string `json:"key"`
	Extension string `json:"extension"`
	Command   string `json:"command"`
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	langs := make([]languageInfo, 0)
	for _, key := range s.langs.Keys() {
		spec, _ := s.langs.Lookup(key)
		langs = append(langs, languageInfo{
			Key:       spec.Key,
			Extension: spec.Extension,
			Command:   spec.Command,
		})
	}
	writeJSON(w, http.StatusOK, langs)
}
