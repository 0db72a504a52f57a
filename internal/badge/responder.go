package badge

import (
	"encoding/json"
	"sync"

	"github.com/amarret/vitalview/internal/vitals"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Responder is the badge side of the channel: it consumes scoreboard
// updates, keeps the per-tab verdict and replies with the tab id.
// It stands in for the extension background worker that paints the
// toolbar badge.
type Responder struct {
	conn    *nats.Conn
	subject string
	tabID   string
	sub     *nats.Subscription

	// optional telemetry hook, invoked per update
	OnVerdict func(tabID string, verdict vitals.Verdict)

	mu       sync.RWMutex
	verdicts map[string]vitals.Verdict
}

// NewResponder creates a responder answering for the given tab
func NewResponder(conn *nats.Conn, subject, tabID string) *Responder {
	return &Responder{
		conn:     conn,
		subject:  subject,
		tabID:    tabID,
		verdicts: make(map[string]vitals.Verdict),
	}
}

// Start subscribes to the badge subject
func (r *Responder) Start() error {
	sub, err := r.conn.Subscribe(r.subject, r.handleMsg)
	if err != nil {
		return err
	}
	r.sub = sub
	return nil
}

func (r *Responder) handleMsg(msg *nats.Msg) {
	reply := r.Handle(msg.Data)
	if reply == nil {
		return
	}
	if err := msg.Respond(reply); err != nil {
		logrus.Warnf("Failed to reply to badge update: %v", err)
	}
}

// Handle processes one raw update and returns the serialized ack,
// or nil for an unreadable update
func (r *Responder) Handle(data []byte) []byte {
	var update vitals.Update
	if err := json.Unmarshal(data, &update); err != nil {
		logrus.Warnf("Dropping unreadable badge update: %v", err)
		return nil
	}

	r.mu.Lock()
	r.verdicts[r.tabID] = update.PassesAllThresholds
	r.mu.Unlock()

	if r.OnVerdict != nil {
		r.OnVerdict(r.tabID, update.PassesAllThresholds)
	}

	location := ""
	if update.Metrics != nil {
		location = update.Metrics.Location
	}
	logrus.Infof("Badge: tab %s is %s (%s)", r.tabID, update.PassesAllThresholds, location)

	reply, err := json.Marshal(vitals.Ack{TabID: r.tabID})
	if err != nil {
		logrus.Warnf("Failed to serialize badge ack: %v", err)
		return nil
	}
	return reply
}

// Verdict returns the last recorded verdict for a tab
func (r *Responder) Verdict(tabID string) (vitals.Verdict, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.verdicts[tabID]
	return v, ok
}

// Stop unsubscribes from the badge subject
func (r *Responder) Stop() error {
	if r.sub == nil {
		return nil
	}
	return r.sub.Unsubscribe()
}
