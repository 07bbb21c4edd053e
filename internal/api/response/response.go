// Package response writes the service's JSON wire format: success
// payloads are returned as-is, errors as {"detail": "<message>"} with
// the matching status code.
package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

// JSON writes v with a 200.
func JSON(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

// Created writes v with a 201.
func Created(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusCreated, v)
}

// Message writes {"message": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

// Error writes {"detail": detail} with the given status.
func Error(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// Unauthorized writes a 401 with the WWW-Authenticate challenge the
// bearer scheme requires.
func Unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
