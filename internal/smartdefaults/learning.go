package smartdefaults

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

const preferencesBucket = "preferences"

// reinforcementDelta is the ±δ feedback-score adjustment applied on every
// accept/reject.
const reinforcementDelta = 0.1

// choiceRecord is one persisted (operation, context, field, value,
// accepted) tuple, plus the bookkeeping needed to compute a feedback
// score and pick the "most-accepted recent value".
type choiceRecord struct {
	Operation string    `json:"operation"`
	Context   string    `json:"context"`
	Field     string    `json:"field"`
	Value     any       `json:"value"`
	Accepted  bool      `json:"accepted"`
	Score     float64   `json:"score"`
	Samples   int       `json:"samples"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoricalPreference is the Learning Engine's answer to
// getHistoricalPreference: the most-accepted recent value for a
// (operation, context, field) triple, with a confidence derived from
// sample size and feedback score.
type HistoricalPreference struct {
	Value      any
	Confidence float64
	Samples    int
}

// LearningEngine persists per-(operation,context,field,value) feedback
// scores to a bbolt-backed store and serves the highest-confidence value
// back out.
type LearningEngine struct {
	mu sync.Mutex
	db *bbolt.DB
}

// OpenLearningEngine opens (creating if absent) the bbolt database at
// dbPath and returns a ready LearningEngine.
func OpenLearningEngine(dbPath string) (*LearningEngine, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, srerr.New(srerr.PersistenceFailure, "creating smart-defaults store directory %q: %v", dir, err)
		}
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, srerr.New(srerr.PersistenceFailure, "opening smart-defaults store %q: %v", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(preferencesBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, srerr.New(srerr.PersistenceFailure, "initializing smart-defaults store: %v", err)
	}

	return &LearningEngine{db: db}, nil
}

// Close releases the underlying database handle.
func (e *LearningEngine) Close() error {
	return e.db.Close()
}

// RecordChoice stores one (operation, context, field, value, accepted)
// observation and adjusts that value's feedback score by ±reinforcementDelta.
func (e *LearningEngine) RecordChoice(operation, context, field string, value any, accepted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := recordKey(operation, context, field, value)
	return e.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))

		rec := choiceRecord{
			Operation: operation,
			Context:   context,
			Field:     field,
			Value:     value,
			Score:     0.5,
		}
		if existing := bucket.Get(key); existing != nil {
			if err := json.Unmarshal(existing, &rec); err != nil {
				return srerr.New(srerr.PersistenceFailure, "decoding stored preference: %v", err)
			}
		}

		rec.Accepted = accepted
		rec.Samples++
		rec.UpdatedAt = time.Now()
		if accepted {
			rec.Score = clamp01(rec.Score + reinforcementDelta)
		} else {
			rec.Score = clamp01(rec.Score - reinforcementDelta)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return srerr.New(srerr.PersistenceFailure, "encoding preference: %v", err)
		}
		return bucket.Put(key, data)
	})
}

// GetHistoricalPreference returns the most-accepted recent value recorded
// for (operation, context, field), or ok=false if nothing has been
// recorded yet.
func (e *LearningEngine) GetHistoricalPreference(operation, context, field string) (HistoricalPreference, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prefix := []byte(fmt.Sprintf("%s\x00%s\x00%s\x00", operation, context, field))
	var best choiceRecord
	found := false

	_ = e.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var rec choiceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if !found || rec.Score > best.Score || (rec.Score == best.Score && rec.UpdatedAt.After(best.UpdatedAt)) {
				best, found = rec, true
			}
		}
		return nil
	})

	if !found {
		return HistoricalPreference{}, false
	}
	return HistoricalPreference{
		Value:      best.Value,
		Confidence: confidenceFromSamples(best.Score, best.Samples),
		Samples:    best.Samples,
	}, true
}

// confidenceFromSamples derives a confidence in [0,1] from the
// reinforcement score and how many observations back it, so a single
// lucky accept doesn't immediately read as a strong preference.
func confidenceFromSamples(score float64, samples int) float64 {
	if samples <= 0 {
		return 0
	}
	weight := float64(samples) / float64(samples+3)
	return clamp01(score * weight)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func recordKey(operation, context, field string, value any) []byte {
	return []byte(fmt.Sprintf("%s\x00%s\x00%s\x00%v", operation, context, field, value))
}
