package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/baechuer/docvault/internal/domain"
)

const maxBodyBytes = 1 << 20

var (
	errEmptyBody    = errors.New("empty body")
	errTrailingData = errors.New("unexpected data after JSON value")
)

// DecodeJSON reads exactly one JSON object into dst. Unknown fields, empty
// bodies, trailing values and bodies over 1MiB are all invalid_json.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := r.Body
	if w != nil {
		body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		return domain.ErrInvalidJSON(err)
	}
	if dec.More() {
		return domain.ErrInvalidJSON(errTrailingData)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.ErrInvalidJSON(errTrailingData)
	}
	return nil
}
