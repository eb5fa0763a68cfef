// Package util holds the JSON message envelope shared by every HTTP surface.
package util

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type HTTPMessage struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
	// QuestionID names the offending question of a rejected submission.
	QuestionID *int64 `json:"question_id,omitempty"`
}

func ReturnHTTPMessage(w http.ResponseWriter, r *http.Request, httpStatus int, messageType string, message string) {
	WriteHTTPMessage(w, httpStatus, HTTPMessage{Type: messageType, Message: message})
}

// WriteHTTPMessage fills in the status and writes m.
func WriteHTTPMessage(w http.ResponseWriter, httpStatus int, m HTTPMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	m.Status = strconv.Itoa(httpStatus)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(m)
}
