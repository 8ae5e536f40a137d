// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/custodyd/blockrecord"
)

const (
	defaultExpiration = 2 * time.Minute
	cleanupInterval   = 1 * time.Minute
)

// blocks are immutable once committed so a cached copy never goes
// stale; copies go in and out so callers cannot alter the cache
type cachedBackend struct {
	Backend
	cache *cache.Cache
}

// NewCached - wrap a backend so single block reads are served from memory
//
// only Get is cached; Range and Subject always read the underlying
// store so verification sees exactly what is on disk
func NewCached(backend Backend, expiration time.Duration) Backend {
	if expiration <= 0 {
		expiration = defaultExpiration
	}
	return &cachedBackend{
		Backend: backend,
		cache:   cache.New(expiration, cleanupInterval),
	}
}

func cacheKey(index uint64) string {
	return strconv.FormatUint(index, 10)
}

// Commit - write through and remember the block
func (c *cachedBackend) Commit(block *blockrecord.Block) error {
	err := c.Backend.Commit(block)
	if nil != err {
		return err
	}
	c.cache.SetDefault(cacheKey(block.Index), block.Copy())
	return nil
}

// Get - a single block, from memory when possible
func (c *cachedBackend) Get(index uint64) (*blockrecord.Block, error) {
	if obj, found := c.cache.Get(cacheKey(index)); found {
		return obj.(*blockrecord.Block).Copy(), nil
	}

	block, err := c.Backend.Get(index)
	if nil != err {
		return nil, err
	}
	c.cache.SetDefault(cacheKey(index), block.Copy())
	return block, nil
}

// Close - drop cached blocks and close the underlying store
func (c *cachedBackend) Close() error {
	c.cache.Flush()
	return c.Backend.Close()
}
