package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

func writeCachedJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func encodeJSON(payload interface{}) ([]byte, error) {
	return json.Marshal(payload)
}

func (s *Server) cacheTTL() time.Duration {
	return time.Duration(s.Cfg.CacheTTLSeconds) * time.Second
}
