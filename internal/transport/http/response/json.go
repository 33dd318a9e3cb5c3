package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Data any       `json:"data"`
	Meta *listMeta `json:"meta,omitempty"`
}

type listMeta struct {
	Count int `json:"count"`
}

const jsonContentType = "application/json; charset=utf-8"

// WriteJSON encodes v with status. A Content-Type already set by the caller
// is kept.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", jsonContentType)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, envelope{Data: data})
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, envelope{Data: data})
}

// List writes {"data": items, "meta": {"count": n}}.
func List(w http.ResponseWriter, items any, n int) {
	WriteJSON(w, http.StatusOK, envelope{Data: items, Meta: &listMeta{Count: n}})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
