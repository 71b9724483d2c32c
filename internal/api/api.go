// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package api serves read-only JSON queries against an executor.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

type Options struct {
	Executor *execute.Executor
	Logger   zerolog.Logger
}

type handler struct {
	x      *execute.Executor
	logger zerolog.Logger
}

// NewHandler returns a handler for the query API.
//
//	GET  /v1/contracts
//	POST /v1/contracts/{address}/query/{type}
//	GET  /v1/bank/{address}
//	GET  /v1/supply/{denom...}
func NewHandler(opts Options) http.Handler {
	h := &handler{x: opts.Executor, logger: opts.Logger.With().Str("module", "api").Logger()}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/contracts", h.contracts)
	mux.HandleFunc("POST /v1/contracts/{address}/query/{type}", h.query)
	mux.HandleFunc("GET /v1/bank/{address}", h.balances)
	mux.HandleFunc("GET /v1/supply/{denom...}", h.supply)
	return mux
}

func (h *handler) contracts(w http.ResponseWriter, r *http.Request) {
	v, err := h.x.Contracts()
	h.respond(w, r, v, err)
}

func (h *handler) query(w http.ResponseWriter, r *http.Request) {
	typ, ok := protocol.QueryTypeByName(r.PathValue("type"))
	if !ok {
		h.respond(w, r, nil, errors.BadRequest.WithFormat("unknown query type %q", r.PathValue("type")))
		return
	}
	q, err := protocol.NewQuery(typ)
	if err != nil {
		h.respond(w, r, nil, errors.BadRequest.Wrap(err))
		return
	}
	// An empty body is an empty query, including a chunked one
	err = json.NewDecoder(r.Body).Decode(q)
	if err != nil && !errors.Is(err, io.EOF) {
		h.respond(w, r, nil, errors.BadRequest.WithFormat("decode %v query: %w", typ, err))
		return
	}

	v, err := h.x.Query(r.PathValue("address"), q)
	h.respond(w, r, v, err)
}

func (h *handler) balances(w http.ResponseWriter, r *http.Request) {
	v, err := h.x.Balances(r.PathValue("address"))
	if v == nil {
		v = protocol.Coins{}
	}
	h.respond(w, r, v, err)
}

func (h *handler) supply(w http.ResponseWriter, r *http.Request) {
	denom := r.PathValue("denom")
	v, err := h.x.Supply(denom)
	h.respond(w, r, protocol.NewCoin(denom, v), err)
}

type errorResponse struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err == nil {
		err = json.NewEncoder(w).Encode(v)
		if err != nil {
			h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode response")
		}
		return
	}

	code := errors.Code(err)
	if code == 0 {
		code = errors.UnknownError
	}
	status := code.HTTPStatus()
	resp := errorResponse{ID: uuid.New(), Code: code.String(), Message: err.Error()}
	if status >= 500 {
		h.logger.Error().Err(err).Stringer("id", resp.ID).Str("path", r.URL.Path).Msg("Request failed")
	} else {
		h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Request rejected")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
