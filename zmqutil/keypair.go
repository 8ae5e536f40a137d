// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"encoding/hex"
	"os"
	"strings"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/util"
)

const (
	taggedPublic  = "PUBLIC:"
	taggedPrivate = "PRIVATE:"
	keyLength     = 32
)

// MakeKeyPair - create a CURVE keypair for the block publisher and
// write the tagged hex keys to separate files
func MakeKeyPair(publicKeyFileName string, privateKeyFileName string) error {
	if util.EnsureFileExists(publicKeyFileName) || util.EnsureFileExists(privateKeyFileName) {
		return fault.ErrKeyFileAlreadyExists
	}

	// keys are Z85 encoded by the library, see: http://rfc.zeromq.org/spec:32
	publicKey, privateKey, err := zmq.NewCurveKeypair()
	if nil != err {
		return err
	}

	publicKey = taggedPublic + hex.EncodeToString([]byte(zmq.Z85decode(publicKey))) + "\n"
	privateKey = taggedPrivate + hex.EncodeToString([]byte(zmq.Z85decode(privateKey))) + "\n"

	if err := os.WriteFile(publicKeyFileName, []byte(publicKey), 0666); nil != err {
		return err
	}
	if err := os.WriteFile(privateKeyFileName, []byte(privateKey), 0600); nil != err {
		os.Remove(publicKeyFileName)
		return err
	}
	return nil
}

// ReadPublicKeyFile - the 32 byte public key held in a file
func ReadPublicKeyFile(fileName string) ([]byte, error) {
	data, err := os.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	key, private, err := ParseKey(string(data))
	if nil != err {
		return nil, err
	}
	if private {
		return nil, fault.ErrInvalidPublicKeyFile
	}
	return key, nil
}

// ReadPrivateKeyFile - the 32 byte private key held in a file
func ReadPrivateKeyFile(fileName string) ([]byte, error) {
	data, err := os.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	key, private, err := ParseKey(string(data))
	if nil != err {
		return nil, err
	}
	if !private {
		return nil, fault.ErrInvalidPrivateKeyFile
	}
	return key, nil
}

// ParseKey - decode a tagged hex key, reporting whether it is private
func ParseKey(data string) ([]byte, bool, error) {
	s := strings.TrimSpace(data)

	tag, private := taggedPublic, false
	if strings.HasPrefix(s, taggedPrivate) {
		tag, private = taggedPrivate, true
	} else if !strings.HasPrefix(s, taggedPublic) {
		return nil, false, fault.ErrInvalidPublicKeyFile
	}

	key, err := hex.DecodeString(s[len(tag):])
	if nil != err || keyLength != len(key) {
		if private {
			return nil, false, fault.ErrInvalidPrivateKeyFile
		}
		return nil, false, fault.ErrInvalidPublicKeyFile
	}
	return key, private, nil
}
