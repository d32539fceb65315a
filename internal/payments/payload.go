package payments

import (
	"encoding/json"
	"errors"
)

var ErrBadPayload = errors.New("malformed invoice payload")

const payloadVersion = 1

// Payload is the structured transaction intent carried through the gateway
// round-trip. It is serialized into the invoice payload and echoed back by
// the success callback; the echo is only trusted after cross-checking
// against the stored Invoice row.
type Payload struct {
	Version int    `json:"v"`
	PlanID  uint   `json:"p"`
	UserID  int64  `json:"u"`
	Month   int    `json:"m"`
	Year    int    `json:"y"`
	PromoID *uint  `json:"pr,omitempty"`
	Mode    string `json:"md"` // new, renewal
	Nonce   int64  `json:"n"`  // issue timestamp, distinguishes retries
}

func (p Payload) Encode() (string, error) {
	p.Version = payloadVersion
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func DecodePayload(s string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, ErrBadPayload
	}
	if p.Version != payloadVersion || p.PlanID == 0 || p.UserID == 0 {
		return nil, ErrBadPayload
	}
	return &p, nil
}
