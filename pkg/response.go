package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	Text string
	HTML string
	JSON string
}{
	Text: "text/plain; charset=utf-8",
	HTML: "text/html; charset=utf-8",
	JSON: "application/json",
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponseBytes(w, ContentType.Text, []byte(message), http.StatusOK)
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response: %s", err)
	}
}

func WriteJSONResponse(w http.ResponseWriter, v interface{}, statusCode int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal json response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	WriteResponseBytes(w, ContentType.JSON, respJson, statusCode)
}

type errorResponse struct {
	Error string `json:"error"`
}

func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, errorResponse{Error: message}, statusCode)
}
