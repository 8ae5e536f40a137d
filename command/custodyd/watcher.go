// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/logger"
)

// reload - apply a changed configuration file
type reload func(fileName string) error

// configuration file watcher
type fileWatcher struct {
	log      *logger.L
	watcher  *fsnotify.Watcher
	filePath string
	reload   reload
	done     chan struct{}
}

// watch the directory holding the file since editors often replace
// files rather than write them in place
func newFileWatcher(log *logger.L, targetFile string, r reload) (*fileWatcher, error) {
	filePath, err := filepath.Abs(filepath.Clean(targetFile))
	if nil != err {
		log.Errorf("parse file %s error: %s", targetFile, err)
		return nil, err
	}

	if _, err := os.Stat(filePath); nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		log.Errorf("new watcher with error: %s", err)
		return nil, err
	}

	return &fileWatcher{
		log:      log,
		watcher:  watcher,
		filePath: filePath,
		reload:   r,
		done:     make(chan struct{}),
	}, nil
}

// Start - begin delivering change events
func (w *fileWatcher) Start() error {
	err := w.watcher.Add(filepath.Dir(w.filePath))
	if nil != err {
		w.log.Errorf("watcher add error: %s, abort", err)
		return err
	}

	go w.run()
	return nil
}

// Stop - close the watcher and wait for its goroutine
func (w *fileWatcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *fileWatcher) run() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.filePath {
				continue
			}
			w.log.Debugf("file event: %v", event)

			if !fileChanged(event) {
				continue
			}
			if err := w.reload(w.filePath); nil != err {
				w.log.Errorf("reload: %q  error: %s", w.filePath, err)
				continue
			}
			w.log.Infof("reloaded: %q", w.filePath)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("watcher error: %s", err)
		}
	}
}

func fileChanged(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create
}
