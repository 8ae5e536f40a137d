// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ChainBrokenError GenericError
type EmptyChangeSetError GenericError
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type SerializationError GenericError
type StorageIOError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised    = ExistsError("already initialised")
	ErrBlockExists           = ExistsError("block index already committed")
	ErrBlockNotFound         = NotFoundError("block not found")
	ErrBrokenLink            = ChainBrokenError("broken link")
	ErrCertificateExists     = ExistsError("certificate file already exists")
	ErrDatabaseIsNotSet      = ProcessError("database is not set")
	ErrEmptyChangeKey        = SerializationError("change key is empty")
	ErrEmptyChangeSet        = EmptyChangeSetError("update has no changes")
	ErrHashMismatch          = ChainBrokenError("hash mismatch")
	ErrIncompatibleDatabase  = InvalidError("incompatible database version")
	ErrIndexGap              = ChainBrokenError("index gap")
	ErrInvalidAction         = InvalidError("invalid action")
	ErrInvalidAllowList      = InvalidError("invalid allow list entry")
	ErrInvalidConfiguration  = InvalidError("configuration must return a table")
	ErrInvalidCursor         = InvalidError("invalid cursor")
	ErrInvalidDigest         = InvalidError("invalid digest")
	ErrInvalidDriver         = InvalidError("invalid database driver")
	ErrInvalidEvent          = InvalidError("invalid mutation event")
	ErrInvalidLoggerChannel  = InvalidError("invalid logger channel")
	ErrInvalidPrivateKeyFile = InvalidError("invalid private key file")
	ErrInvalidPublicKeyFile  = InvalidError("invalid public key file")
	ErrInvalidRange          = InvalidError("invalid block range")
	ErrInvalidStoredBlock    = StorageIOError("stored block cannot be decoded")
	ErrKeyFileAlreadyExists  = ExistsError("key file already exists")
	ErrMissingParameters     = InvalidError("missing parameters")
	ErrMissingSubject        = InvalidError("subject id is required")
	ErrMissingUser           = InvalidError("user id is required")
	ErrNestedValue           = SerializationError("nested value cannot be represented")
	ErrNewValueOnDelete      = InvalidError("delete cannot carry new values")
	ErrNotInitialised        = NotFoundError("not initialised")
	ErrNumberNotFinite       = SerializationError("number is not finite")
	ErrNumberPrecision       = SerializationError("number exceeds fixed precision")
	ErrNumberRange           = SerializationError("number out of range")
	ErrNumberSyntax          = SerializationError("number syntax is invalid")
	ErrOldValueOnCreate      = InvalidError("create cannot carry old values")
	ErrRateLimiting          = InvalidError("rate limiting")
	ErrStorageRead           = StorageIOError("storage read failed")
	ErrStorageWrite          = StorageIOError("storage write failed")
	ErrUTF8                  = SerializationError("text is not valid UTF-8")
	ErrUnknownValueKind      = SerializationError("unknown value kind")
)

// the error interface methods
func (e GenericError) Error() string        { return string(e) }
func (e ChainBrokenError) Error() string    { return string(e) }
func (e EmptyChangeSetError) Error() string { return string(e) }
func (e ExistsError) Error() string         { return string(e) }
func (e InvalidError) Error() string        { return string(e) }
func (e NotFoundError) Error() string       { return string(e) }
func (e ProcessError) Error() string        { return string(e) }
func (e SerializationError) Error() string  { return string(e) }
func (e StorageIOError) Error() string      { return string(e) }

// determine the class of an error, looking through any wrapping
func IsErrChainBroken(e error) bool    { var x ChainBrokenError; return errors.As(e, &x) }
func IsErrEmptyChangeSet(e error) bool { var x EmptyChangeSetError; return errors.As(e, &x) }
func IsErrExists(e error) bool         { var x ExistsError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool        { var x InvalidError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool       { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool        { var x ProcessError; return errors.As(e, &x) }
func IsErrSerialization(e error) bool  { var x SerializationError; return errors.As(e, &x) }
func IsErrStorageIO(e error) bool      { var x StorageIOError; return errors.As(e, &x) }
