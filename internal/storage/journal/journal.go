// Package journal keeps a write-ahead record of order intents. An
// intent is written before an order is submitted and marked done or
// failed afterwards, so a crash between submission and ledger
// persistence leaves a durable trace for manual reconciliation.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

const (
	intentKeyPrefix = "order_intent_"

	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"

	walSegmentThreshold = 1000
	walMaxSegments      = 100
	walDirPermissions   = 0o755
)

// Intent is one journaled order attempt.
type Intent struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Pair     string          `json:"pair"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Time     time.Time       `json:"time"`
	// FilledQuantity and FilledPrice are set once the exchange
	// confirms the fill, before the ledger write. They are the raw
	// numbers a human needs if the ledger write then fails.
	FilledQuantity string `json:"filled_quantity,omitempty"`
	FilledPrice    string `json:"filled_price,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Journal persists intents to a write-ahead log.
type Journal struct {
	wal     *gowal.Wal
	intents []*Intent
	index   map[string]*Intent
}

// Open creates (or reopens) the journal in dir, replaying prior intents.
func Open(dir string, pair domain.Pair) (*Journal, error) {
	walDir := fmt.Sprintf("%s/%s", dir, strings.ToLower(pair.String()))
	if err := os.MkdirAll(walDir, walDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure journal directory %s", walDir)
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              walDir,
		Prefix:           "log_",
		SegmentThreshold: walSegmentThreshold,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open journal WAL")
	}

	j := &Journal{
		wal:     wal,
		intents: make([]*Intent, 0),
		index:   make(map[string]*Intent),
	}

	for msg := range wal.Iterator() {
		if !strings.HasPrefix(msg.Key, intentKeyPrefix) {
			continue
		}
		var intent Intent
		if err := json.Unmarshal(msg.Value, &intent); err != nil {
			continue
		}
		if existing, ok := j.index[intent.ID]; ok {
			*existing = intent
			continue
		}
		intentCopy := intent
		j.intents = append(j.intents, &intentCopy)
		j.index[intent.ID] = &intentCopy
	}

	return j, nil
}

// Prepare journals a pending intent and returns it. The intent ID is
// also used as the exchange client order ID so submissions stay
// correlated with their journal entries.
func (j *Journal) Prepare(pair domain.Pair, quantity, price decimal.Decimal, at time.Time) (*Intent, error) {
	intent := &Intent{
		ID:       uuid.New().String(),
		Status:   StatusPending,
		Pair:     pair.String(),
		Quantity: quantity,
		Price:    price,
		Time:     at,
	}

	if err := j.persist(intent); err != nil {
		return nil, err
	}

	j.intents = append(j.intents, intent)
	j.index[intent.ID] = intent
	return intent, nil
}

// MarkFilled records the exchange-confirmed fill on a pending intent.
func (j *Journal) MarkFilled(intent *Intent, filledQuantity, filledPrice decimal.Decimal, orderID string) error {
	if intent == nil {
		return nil
	}
	intent.FilledQuantity = filledQuantity.String()
	intent.FilledPrice = filledPrice.String()
	intent.OrderID = orderID
	return j.persist(intent)
}

// MarkDone transitions an intent to done after the ledger is persisted.
func (j *Journal) MarkDone(intent *Intent) error {
	if intent == nil {
		return nil
	}
	intent.Status = StatusDone
	intent.Error = ""
	return j.persist(intent)
}

// MarkFailed transitions an intent to failed, keeping the cause.
func (j *Journal) MarkFailed(intent *Intent, cause error) error {
	if intent == nil {
		return nil
	}
	intent.Status = StatusFailed
	if cause != nil {
		intent.Error = cause.Error()
	}
	return j.persist(intent)
}

// Pending returns intents that never reached a terminal status, i.e.
// candidates for manual reconciliation.
func (j *Journal) Pending() []*Intent {
	pending := make([]*Intent, 0)
	for _, intent := range j.intents {
		if intent.Status == StatusPending {
			pending = append(pending, intent)
		}
	}
	return pending
}

// Close releases the underlying WAL.
func (j *Journal) Close() error {
	return j.wal.Close()
}

func (j *Journal) persist(intent *Intent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order intent")
	}
	key := fmt.Sprintf("%s%s", intentKeyPrefix, intent.ID)
	nextIndex := j.wal.CurrentIndex() + 1
	return j.wal.Write(nextIndex, key, data)
}
