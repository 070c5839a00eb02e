package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// Badger key layout. Index keys carry each ID as a length-prefixed component
// ("<len>:<id>"), so no ID can run into the next one whatever characters it holds:
// the index prefix of student "S1" never matches student "S1:X" or "S10".
const (
	coursePrefix              = "course:"
	registrationPrefix        = "registration:"
	registrationStudentPrefix = "idx:registration:student:"
	registrationCoursePrefix  = "idx:registration:course:"
)

func keyComponent(id string) string {
	return strconv.Itoa(len(id)) + ":" + id
}

func courseKey(courseID string) []byte {
	return []byte(coursePrefix + courseID)
}

func registrationKey(registrationID string) []byte {
	return []byte(registrationPrefix + registrationID)
}

func studentIndexPrefix(studentID string) string {
	return registrationStudentPrefix + keyComponent(studentID)
}

func courseIndexPrefix(courseID string) string {
	return registrationCoursePrefix + keyComponent(courseID)
}

func studentIndexKey(studentID, courseID string) []byte {
	return []byte(studentIndexPrefix(studentID) + keyComponent(courseID))
}

func courseIndexKey(courseID, studentID string) []byte {
	return []byte(courseIndexPrefix(courseID) + keyComponent(studentID))
}

// updateWithRetry runs fn in a read-write transaction and replays it when Badger
// detects a conflicting commit. Every key fn reads takes part in conflict
// detection, so a committed fn saw a state no concurrent writer invalidated.
func updateWithRetry(ctx context.Context, db *badger.DB, attempts int, fn func(txn *badger.Txn) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("transaction still conflicting after %d attempts: %w", attempts, err)
}

// getJSON loads and decodes the value at key. It returns badger.ErrKeyNotFound untouched.
func getJSON(txn *badger.Txn, key []byte, out interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key []byte, in interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(key, data)
}

// scanPrefix calls fn with the value of every key under prefix, in key order.
func scanPrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
