// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/counter"
	"github.com/bitmark-inc/custodyd/custody"
	"github.com/bitmark-inc/custodyd/query"
)

// restricted route names for the allow list
const (
	allowDetails = "details"
	allowEvents  = "events"
	allowMetrics = "metrics"
)

const (
	requestIDHeader = "X-Request-Id"
	defaultRate     = 100.0
	defaultBurst    = 20
)

// Recorder - accepts mutation events
type Recorder interface {
	Record(ctx context.Context, event custody.Event) (*blockrecord.Block, error)
}

// Options - handler settings from the configuration
type Options struct {
	Version            string
	DataDirectory      string
	RequestRate        float64
	MaximumConnections uint64
	Allow              Allow
}

// Handler - the HTTP handlers sharing one ledger
type Handler struct {
	log      *logger.L
	surface  *query.Surface
	recorder Recorder
	limiter  *rate.Limiter
	schema   *gojsonschema.Schema

	start              time.Time
	version            string
	dataDirectory      string
	maximumConnections uint64
	connections        counter.Counter

	allowLock sync.RWMutex
	allow     Allow
}

// NewHandler - create the handlers
func NewHandler(log *logger.L, surface *query.Surface, recorder Recorder, options Options) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(eventSchema))
	if nil != err {
		return nil, err
	}

	requestRate := options.RequestRate
	if requestRate <= 0 {
		requestRate = defaultRate
	}

	allow := options.Allow
	if nil == allow {
		allow = Allow{}
	}

	return &Handler{
		log:                log,
		surface:            surface,
		recorder:           recorder,
		limiter:            rate.NewLimiter(rate.Limit(requestRate), defaultBurst),
		schema:             schema,
		start:              time.Now(),
		version:            options.Version,
		dataDirectory:      options.DataDirectory,
		maximumConnections: options.MaximumConnections,
		allow:              allow,
	}, nil
}

// SetAllow - replace the allow list, e.g. after a configuration reload
func (h *Handler) SetAllow(allow Allow) {
	h.allowLock.Lock()
	h.allow = allow
	h.allowLock.Unlock()
}

// Connections - number of requests in progress
func (h *Handler) Connections() uint64 {
	return h.connections.Uint64()
}

// Router - all routes with their middleware
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.requestID)
	r.Use(h.limit)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { sendNotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { sendMethodNotAllowed(w) })

	r.Route("/custody-log", func(r chi.Router) {
		r.Get("/", h.chain)
		r.Get("/tail", h.tail)
		r.Get("/verify", h.verifyChain)
		r.With(h.restrict(allowEvents)).Post("/events", h.events)
		r.Get("/{mrn}", h.trail)
		r.Get("/{mrn}/verify", h.verifySubject)
	})
	r.With(h.restrict(allowDetails)).Get("/custodyd/details", h.details)
	r.With(h.restrict(allowMetrics)).Handle("/metrics", promhttp.Handler())

	return r
}

// echo a client supplied request id or create a new one
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); nil != err {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		h.log.Debugf("request: %s  %s %s  from: %s", id, r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// connection count and rate limits
func (h *Handler) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := h.connections.Increment()
		defer h.connections.Decrement()

		if h.maximumConnections > 0 && n > h.maximumConnections {
			h.log.Warnf("too many connections: %d  from: %s", n, r.RemoteAddr)
			sendError(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		if err := rateLimit(h.limiter); nil != err {
			sendFault(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// only clients in the named allow list
func (h *Handler) restrict(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.allowLock.RLock()
			ok := h.allow.permits(name, r)
			h.allowLock.RUnlock()

			if !ok {
				h.log.Warnf("deny access: %s  to: %q", r.RemoteAddr, name)
				sendForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
