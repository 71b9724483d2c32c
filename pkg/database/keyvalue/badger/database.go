// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package badger

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

// TruncateBadger controls whether Badger is configured to truncate corrupted
// data. If the process is terminated abruptly, setting this may be necessary
// to reopen the database.
var TruncateBadger = false

type Database struct {
	opts
	badger *badger.DB
	ready  bool
	mu     sync.RWMutex
}

type opts struct {
	logger zerolog.Logger
}

type Option func(*opts) error

// WithLogger routes Badger's log output to the given logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *opts) error {
		o.logger = logger
		return nil
	}
}

func New(filepath string, o ...Option) (*Database, error) {
	// Make sure all directories exist
	err := os.MkdirAll(filepath, 0700)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("open badger: create %q: %w", filepath, err)
	}

	d := new(Database)
	d.logger = zerolog.Nop()
	for _, o := range o {
		err = o(&d.opts)
		if err != nil {
			return nil, errors.UnknownError.Wrap(err)
		}
	}

	opts := badger.DefaultOptions(filepath)
	opts = opts.WithLogger(zlogger{d.logger.With().Str("module", "badger").Logger()})

	// Truncate corrupted data
	if TruncateBadger {
		opts = opts.WithTruncate(true)
	}

	d.ready = true

	// Open Badger
	d.badger, err = badger.Open(opts)
	if err != nil {
		return nil, err
	}
	mOpen.Inc()

	// Run GC every hour
	go d.gc()

	return d, nil
}

func (d *Database) key(key *database.Key) []byte {
	b, err := key.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return b
}

// Begin begins a change set.
func (d *Database) Begin(prefix *database.Key, writable bool) keyvalue.ChangeSet {
	// Use a read-only transaction for reading
	rd := d.badger.NewTransaction(false)
	mReaders.Inc()

	// Read from the transaction
	get := func(key *database.Key) ([]byte, error) {
		item, err := rd.Get(d.key(key))
		switch {
		case err == nil:
			// Ok
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil, database.NewNotFoundError(key)
		default:
			return nil, err
		}

		v, err := item.ValueCopy(nil)
		switch {
		case err == nil:
			return v, nil
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil, database.NewNotFoundError(key)
		default:
			return nil, errors.UnknownError.WithFormat("get %v: %w", key, err)
		}
	}

	forEach := func(prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error {
		return d.forEach(rd, prefix, reverse, fn)
	}

	// Commit to the write batch
	var commit memory.CommitFunc
	if writable {
		commit = d.commit
	}

	// Discard the transaction
	var once sync.Once
	discard := func() {
		once.Do(func() {
			rd.Discard()
			mReaders.Dec()
		})
	}

	// The memory changeset caches entries in a map so Get will see values
	// updated with Put, regardless of the underlying transaction and write
	// batch behavior
	return memory.NewChangeSet(memory.ChangeSetOptions{
		Prefix:  prefix,
		Get:     get,
		ForEach: forEach,
		Commit:  commit,
		Discard: discard,
	})
}

func (d *Database) commit(entries map[string]memory.Entry) error {
	l, err := d.lock(false)
	if err != nil {
		return err
	}
	defer l.Unlock()

	start := time.Now()
	err = d.write(entries)
	if err != nil {
		mCommits.WithLabelValues("failed").Inc()
		return errors.UnknownError.WithFormat("commit %d entries: %w", len(entries), err)
	}

	mCommits.WithLabelValues("ok").Inc()
	mCommitSeconds.Observe(time.Since(start).Seconds())
	mCommitEntries.Observe(float64(len(entries)))
	return nil
}

// write flushes the entries through a write batch, which is not subject to
// the size limits of a badger transaction.
func (d *Database) write(entries map[string]memory.Entry) error {
	wr := d.badger.NewWriteBatch()
	defer wr.Cancel()

	var err error
	for _, e := range entries {
		if e.Delete {
			err = wr.Delete(d.key(e.Key))
		} else {
			err = wr.Set(d.key(e.Key), e.Value)
		}
		if err != nil {
			return err
		}
	}
	return wr.Flush()
}

func (d *Database) forEach(txn *badger.Txn, prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error {
	p := d.key(prefix)
	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Reverse:        reverse,
		Prefix:         p,
	})
	defer it.Close()

	seek := p
	if reverse {
		// Seek past the last key with the prefix
		seek = append(bytes.Clone(p), 0xFF, 0xFF, 0xFF, 0xFF)
	}

	for it.Seek(seek); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		key, err := database.ParseKey(item.KeyCopy(nil))
		if err != nil {
			return errors.InternalError.WithFormat("cannot unmarshal key: %w", err)
		}

		v, err := item.ValueCopy(nil)
		if err != nil {
			return errors.UnknownError.WithFormat("get %v: %w", key, err)
		}

		err = fn(key, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close the underlying database
func (d *Database) Close() error {
	if l, err := d.lock(true); err != nil {
		return err
	} else {
		defer l.Unlock()
	}

	d.ready = false
	mOpen.Dec()
	return d.badger.Close()
}

func (d *Database) gc() {
	for {
		// GC every hour
		time.Sleep(time.Hour)

		// Still open?
		l, err := d.lock(false)
		if err != nil {
			return
		}

		// Run GC if 50% space could be reclaimed
		err = d.badger.RunValueLogGC(0.5)
		switch {
		case err == nil:
			mGC.WithLabelValues("reclaimed").Inc()
		case errors.Is(err, badger.ErrNoRewrite):
			mGC.WithLabelValues("none").Inc()
		default:
			mGC.WithLabelValues("failed").Inc()
			d.logger.Error().Err(err).Msg("Badger GC failed")
		}

		// Release the lock
		l.Unlock()
	}
}

// lock acquires a lock on the ready mutex and checks for readiness. This
// prevents race conditions between commits and Close.
func (d *Database) lock(closing bool) (sync.Locker, error) {
	var l sync.Locker = &d.mu
	if !closing {
		l = d.mu.RLocker()
	}

	l.Lock()
	if !d.ready {
		l.Unlock()
		return nil, errors.NotReady.With("database is closed")
	}

	return l, nil
}

// zlogger adapts a zerolog logger to Badger's logger interface.
type zlogger struct {
	zerolog.Logger
}

func (l zlogger) format(format string, args ...interface{}) string {
	s := fmt.Sprintf(format, args...)
	return strings.TrimRight(s, "\n")
}

func (l zlogger) Errorf(format string, args ...interface{}) {
	l.Logger.Error().Msg(l.format(format, args...))
}

func (l zlogger) Warningf(format string, args ...interface{}) {
	l.Logger.Warn().Msg(l.format(format, args...))
}

func (l zlogger) Infof(format string, args ...interface{}) {
	l.Logger.Info().Msg(l.format(format, args...))
}

func (l zlogger) Debugf(format string, args ...interface{}) {
	l.Logger.Debug().Msg(l.format(format, args...))
}
