package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"

	"github.com/Sumitdevelops/codered/decision"
)

// BoltDBDecisionStore persists decision records to a BoltDB file so
// routing history survives restarts.
type BoltDBDecisionStore struct {
	db *bolt.DB

	dbFile string

	fileMode os.FileMode

	bucketName string
}

func NewBoltDBDecisionStore(file string, mode os.FileMode, bucketName string) (*BoltDBDecisionStore, error) {
	db, err := bolt.Open(file, mode, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v", file)
	}

	decisionStore := BoltDBDecisionStore{
		db:         db,
		dbFile:     file,
		fileMode:   mode,
		bucketName: bucketName,
	}

	err = decisionStore.CreateBucket()
	if err != nil {
		zap.L().Debug("bucket already exists, will use it instead of creating new one",
			zap.String("bucket", bucketName))
	}

	return &decisionStore, nil
}

func (s *BoltDBDecisionStore) Put(key string, value interface{}) error {
	record, ok := value.(*decision.Record)
	if !ok {
		return fmt.Errorf("value %v is not a decision.Record type", value)
	}

	return s.db.Update(
		func(tx *bolt.Tx) error {
			bucket := tx.Bucket([]byte(s.bucketName))

			buf, err := json.Marshal(record)
			if err != nil {
				return err
			}

			return bucket.Put([]byte(key), buf)
		},
	)
}

func (s *BoltDBDecisionStore) Get(key string) (interface{}, error) {
	var record decision.Record

	err := s.db.View(
		func(tx *bolt.Tx) error {
			bucket := tx.Bucket([]byte(s.bucketName))

			value := bucket.Get([]byte(key))
			if value == nil {
				return fmt.Errorf("decision record %v not found", key)
			}

			return json.Unmarshal(value, &record)
		},
	)

	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *BoltDBDecisionStore) List() (interface{}, error) {
	var records []*decision.Record

	err := s.db.View(
		func(tx *bolt.Tx) error {
			bucket := tx.Bucket([]byte(s.bucketName))

			return bucket.ForEach(
				func(k, v []byte) error {
					var record decision.Record
					if err := json.Unmarshal(v, &record); err != nil {
						return err
					}

					records = append(records, &record)

					return nil
				},
			)
		},
	)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *BoltDBDecisionStore) Count() (int, error) {
	recordCount := 0

	err := s.db.View(
		func(tx *bolt.Tx) error {
			bucket := tx.Bucket([]byte(s.bucketName))

			return bucket.ForEach(
				func(k, v []byte) error {
					recordCount++
					return nil
				},
			)
		},
	)

	if err != nil {
		return -1, err
	}

	return recordCount, nil
}

func (s *BoltDBDecisionStore) CreateBucket() error {
	return s.db.Update(
		func(tx *bolt.Tx) error {
			_, err := tx.CreateBucket([]byte(s.bucketName))

			if err != nil {
				return fmt.Errorf("create bucket %s: %s", s.bucketName, err)
			}

			return nil
		},
	)
}

func (s *BoltDBDecisionStore) Close() {
	s.db.Close()
}
