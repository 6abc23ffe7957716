package rpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"assembly/core"
	"assembly/core/types"
	"assembly/crypto"
)

const (
	codeInvalidParams = -32602
	codeNotFound      = -32004
	codeServerError   = -32000
)

// Response is the envelope every query route writes.
type Response struct {
	Result interface{} `json:"result,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

// Error describes a failed query.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProgramResponse describes the deployed program.
type ProgramResponse struct {
	ProgramID              crypto.Address `json:"programId"`
	TokenProgramID         crypto.Address `json:"tokenProgramId"`
	AssociatedTokenProgram crypto.Address `json:"associatedTokenProgramId"`
	Now                    int64          `json:"now"`
}

// AddressResponse wraps a single derived address.
type AddressResponse struct {
	Address crypto.Address `json:"address"`
}

// EventsResponse lists recently committed events, oldest first.
type EventsResponse struct {
	Events []types.Event `json:"events"`
}

func writeError(w http.ResponseWriter, status int, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	errObj := &Error{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: errObj})
}

func writeResult(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{Result: result})
}

// writeQueryError maps an executor query error onto a response.
func writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, codeServerError, "query failed", err.Error())
}
