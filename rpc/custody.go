// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xeipuuv/gojsonschema"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/custody"
	"github.com/bitmark-inc/custodyd/diff"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/query"
)

// largest accepted event body
const maximumEventSize = 1 << 20

// shape of a mutation event, values must be scalars
const eventSchema = `{
  "type": "object",
  "required": ["subject_id", "user_id", "action"],
  "properties": {
    "subject_id":   {"type": "string", "minLength": 1},
    "user_id":      {"type": "string", "minLength": 1},
    "action":       {"type": "string", "enum": ["CREATE", "UPDATE", "DELETE"]},
    "old":          {"$ref": "#/definitions/snapshot"},
    "new":          {"$ref": "#/definitions/snapshot"},
    "audit_marker": {"type": "boolean"}
  },
  "additionalProperties": false,
  "definitions": {
    "snapshot": {
      "type": ["object", "null"],
      "additionalProperties": {"type": ["string", "number", "boolean", "null"]}
    }
  }
}`

// body of POST /custody-log/events
type eventRequest struct {
	SubjectID   string          `json:"subject_id"`
	UserID      string          `json:"user_id"`
	Action      string          `json:"action"`
	Old         json.RawMessage `json:"old"`
	New         json.RawMessage `json:"new"`
	AuditMarker bool            `json:"audit_marker"`
}

type eventReply struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message"`
	UpdatedFields []string     `json:"updated_fields"`
	Block         *query.Entry `json:"block,omitempty"`
}

// GET /custody-log?from=N&to=M
func (h *Handler) chain(w http.ResponseWriter, r *http.Request) {
	from, err := indexParameter(r, "from")
	if nil != err {
		sendFault(w, err)
		return
	}
	to, err := indexParameter(r, "to")
	if nil != err {
		sendFault(w, err)
		return
	}

	entries, err := h.surface.Chain(r.Context(), from, to)
	if nil != err {
		h.log.Errorf("chain: error: %s", err)
		sendFault(w, err)
		return
	}
	sendReply(w, entries)
}

// GET /custody-log/tail
func (h *Handler) tail(w http.ResponseWriter, _ *http.Request) {
	entry, ok := h.surface.Tail()
	if !ok {
		sendReply(w, struct {
			Empty bool `json:"empty"`
		}{Empty: true})
		return
	}
	sendReply(w, entry)
}

// GET /custody-log/{mrn}
func (h *Handler) trail(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "mrn")
	entries, err := h.surface.AuditTrail(r.Context(), subjectID)
	if nil != err {
		h.log.Errorf("trail: %q  error: %s", subjectID, err)
		sendFault(w, err)
		return
	}
	sendReply(w, entries)
}

// GET /custody-log/verify
func (h *Handler) verifyChain(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, "")
}

// GET /custody-log/{mrn}/verify
func (h *Handler) verifySubject(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, chi.URLParam(r, "mrn"))
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, subjectID string) {
	result, err := h.surface.Verify(r.Context(), subjectID)
	if nil != err {
		h.log.Errorf("verify: %q  error: %s", subjectID, err)
		sendFault(w, err)
		return
	}
	sendReply(w, result)
}

// POST /custody-log/events
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maximumEventSize))
	if nil != err {
		sendError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(body))
	if nil != err {
		sendFault(w, fmt.Errorf("%w: %s", fault.ErrInvalidEvent, err))
		return
	}
	if !result.Valid() {
		s := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			s = append(s, e.String())
		}
		sendFault(w, fmt.Errorf("%w: %s", fault.ErrInvalidEvent, strings.Join(s, "; ")))
		return
	}

	event, err := parseEvent(body)
	if nil != err {
		sendFault(w, err)
		return
	}

	block, err := h.recorder.Record(r.Context(), event)
	if fault.IsErrEmptyChangeSet(err) {
		sendReply(w, eventReply{
			Success:       true,
			Message:       "No changes detected",
			UpdatedFields: []string{},
		})
		return
	}
	if nil != err {
		sendFault(w, err)
		return
	}

	fields := block.Changes.Keys()
	entry := query.NewEntry(block)
	sendReply(w, eventReply{
		Success:       true,
		Message:       fmt.Sprintf("%s recorded, %d fields changed", block.Action, len(fields)),
		UpdatedFields: fields,
		Block:         &entry,
	})
}

// subject ids that the fixed /custody-log routes would shadow
var reservedSubjects = map[string]struct{}{
	"events": {},
	"tail":   {},
	"verify": {},
}

// convert a schema valid body to an event
func parseEvent(body []byte) (custody.Event, error) {
	var request eventRequest
	if err := json.Unmarshal(body, &request); nil != err {
		return custody.Event{}, fmt.Errorf("%w: %s", fault.ErrInvalidEvent, err)
	}
	if _, ok := reservedSubjects[request.SubjectID]; ok {
		return custody.Event{}, fmt.Errorf("%w: subject id %q is reserved", fault.ErrInvalidEvent, request.SubjectID)
	}

	action, err := blockrecord.ParseAction(request.Action)
	if nil != err {
		return custody.Event{}, err
	}
	previous, err := diff.SnapshotFromJSON(request.Old)
	if nil != err {
		return custody.Event{}, err
	}
	next, err := diff.SnapshotFromJSON(request.New)
	if nil != err {
		return custody.Event{}, err
	}

	return custody.Event{
		SubjectID:   request.SubjectID,
		ActorID:     request.UserID,
		Action:      action,
		Old:         previous,
		New:         next,
		AuditMarker: request.AuditMarker,
	}, nil
}

// optional block index query parameter
func indexParameter(r *http.Request, name string) (*uint64, error) {
	s := r.URL.Query().Get(name)
	if "" == s {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if nil != err {
		return nil, fmt.Errorf("%w: %s: %q", fault.ErrInvalidRange, name, s)
	}
	return &n, nil
}
