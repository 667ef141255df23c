package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// InvalidationEnvelope is the wire form of an applied invalidation.
type InvalidationEnvelope struct {
	secondary.InvalidationMessage
	Timestamp time.Time `json:"timestamp"`
}

// NewInvalidationEnvelope stamps msg with the current time.
func NewInvalidationEnvelope(msg secondary.InvalidationMessage) *InvalidationEnvelope {
	return &InvalidationEnvelope{InvalidationMessage: msg, Timestamp: time.Now().UTC()}
}

// ToJSON converts the envelope to JSON bytes.
func (e *InvalidationEnvelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// InvalidationEnvelopeFromJSON decodes and validates an envelope. Every
// pattern must name a known query with a known policy.
func InvalidationEnvelopeFromJSON(data []byte) (*InvalidationEnvelope, error) {
	var env InvalidationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.SessionID == "" {
		return nil, fmt.Errorf("invalidation message has no session id")
	}
	for _, p := range env.Patterns {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}
	return &env, nil
}
