package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 64 << 10

var errInvalidBody = errors.New("invalid request body")

// decodeJSON reads a single JSON object into dst, rejecting unknown fields,
// trailing data and bodies over maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		return errors.Join(errInvalidBody, err)
	}
	if dec.Decode(&struct{}{}) != io.EOF {
		return errInvalidBody
	}
	return nil
}
