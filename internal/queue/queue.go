// Package queue provides the durable badger-backed job queue feeding
// the pipeline worker pool.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// ErrEmpty is returned by Receive when no message is ready.
var ErrEmpty = errors.New("no messages ready")

// envelope is the stored message wrapper. VisibleAt implements the
// visibility timeout: a received message becomes invisible until the
// deadline passes, then redelivers unless deleted first.
type envelope struct {
	ID           string    `json:"id"`
	JobID        string    `json:"job_id"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
	VisibleAt    time.Time `json:"visible_at"`
	ReceiveCount int       `json:"receive_count"`
}

// Delivery is one received message. Delete acknowledges it; an
// unacknowledged message redelivers after the visibility timeout, up to
// the receive cap.
type Delivery struct {
	JobID        string
	ReceiveCount int
	Delete       func() error
}

// JobQueue is a persistent FIFO of job ids with at-least-once delivery.
// Messages are ordered by visibility deadline; a sortable index keyspace
// lets Receive scan only ready messages.
type JobQueue struct {
	db                *badger.DB
	name              string
	visibilityTimeout time.Duration
	maxReceive        int
}

func NewJobQueue(db *badger.DB, name string, visibilityTimeout time.Duration, maxReceive int) (*JobQueue, error) {
	if db == nil {
		return nil, errors.New("badger db is required")
	}
	if name == "" {
		return nil, errors.New("queue name is required")
	}
	if visibilityTimeout <= 0 {
		visibilityTimeout = 5 * time.Minute
	}
	if maxReceive <= 0 {
		maxReceive = 3
	}
	return &JobQueue{db: db, name: name, visibilityTimeout: visibilityTimeout, maxReceive: maxReceive}, nil
}

// Enqueue appends a job id, immediately visible.
func (q *JobQueue) Enqueue(_ context.Context, jobID string) error {
	now := time.Now()
	env := envelope{
		ID:         uuid.New().String(),
		JobID:      jobID,
		EnqueuedAt: now,
		VisibleAt:  now,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal queue envelope: %w", err)
	}

	return q.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(q.msgKey(env.ID), data); err != nil {
			return err
		}
		return txn.Set(q.indexKey(env.VisibleAt, env.ID), []byte{})
	})
}

// Receive claims the next visible message, pushing its visibility
// deadline out by the queue's timeout. Returns ErrEmpty when nothing is
// ready. A message past the receive cap is dropped as a poison pill.
func (q *JobQueue) Receive(_ context.Context) (*Delivery, error) {
	var claimed envelope

	err := q.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte(fmt.Sprintf("queue:%s:index:", q.name))
		it := txn.NewIterator(opts)
		defer it.Close()

		now := time.Now()
		var oldIndexKey []byte

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)

			visibleAt, id, err := q.parseIndexKey(key)
			if err != nil {
				continue
			}
			// The index is sorted by deadline, so the first future entry
			// ends the scan.
			if visibleAt.After(now) {
				break
			}

			item, err := txn.Get(q.msgKey(id))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					// Orphaned index entry.
					if err := txn.Delete(key); err != nil {
						return err
					}
					continue
				}
				return err
			}

			var env envelope
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &env) }); err != nil {
				return err
			}

			if env.ReceiveCount >= q.maxReceive {
				if err := txn.Delete(key); err != nil {
					return err
				}
				if err := txn.Delete(q.msgKey(id)); err != nil {
					return err
				}
				continue
			}

			claimed = env
			oldIndexKey = key
			break
		}

		if claimed.ID == "" {
			return ErrEmpty
		}

		claimed.ReceiveCount++
		claimed.VisibleAt = time.Now().Add(q.visibilityTimeout)

		data, err := json.Marshal(claimed)
		if err != nil {
			return err
		}
		if err := txn.Set(q.msgKey(claimed.ID), data); err != nil {
			return err
		}
		if err := txn.Delete(oldIndexKey); err != nil {
			return err
		}
		return txn.Set(q.indexKey(claimed.VisibleAt, claimed.ID), []byte{})
	})
	if err != nil {
		return nil, err
	}

	msgID := claimed.ID
	return &Delivery{
		JobID:        claimed.JobID,
		ReceiveCount: claimed.ReceiveCount,
		Delete:       func() error { return q.delete(msgID) },
	}, nil
}

func (q *JobQueue) delete(msgID string) error {
	return q.db.Update(func(txn *badger.Txn) error {
		msgKey := q.msgKey(msgID)
		item, err := txn.Get(msgKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		var env envelope
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &env) }); err != nil {
			return err
		}

		if err := txn.Delete(q.indexKey(env.VisibleAt, msgID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Delete(msgKey)
	})
}

func (q *JobQueue) msgKey(id string) []byte {
	return []byte(fmt.Sprintf("queue:%s:msg:%s", q.name, id))
}

// indexKey zero-pads the nanosecond deadline to 20 digits so the byte
// order of keys equals the numeric order of deadlines.
func (q *JobQueue) indexKey(visibleAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("queue:%s:index:%020d:%s", q.name, visibleAt.UnixNano(), id))
}

func (q *JobQueue) parseIndexKey(key []byte) (time.Time, string, error) {
	prefix := fmt.Sprintf("queue:%s:index:", q.name)
	suffix := string(key)
	if len(suffix) <= len(prefix) {
		return time.Time{}, "", errors.New("index key too short")
	}
	suffix = suffix[len(prefix):]
	if len(suffix) < 21 {
		return time.Time{}, "", errors.New("index key suffix too short")
	}

	var ts int64
	if _, err := fmt.Sscanf(suffix[:20], "%d", &ts); err != nil {
		return time.Time{}, "", err
	}
	return time.Unix(0, ts), suffix[21:], nil
}
