package order

import (
	"encoding/json"
	"time"
)

// Meta is the order's extension document. Known keys are typed; anything else written by
// other tools survives round-trips through Extra.
type Meta struct {
	GatewayOrderID       string          `json:"gateway_order_id,omitempty"`
	GatewayAmount        int64           `json:"gateway_amount,omitempty"`
	GatewayCurrency      string          `json:"gateway_currency,omitempty"`
	GatewayPaymentID     string          `json:"gateway_payment_id,omitempty"`
	GatewaySignature     string          `json:"gateway_signature,omitempty"`
	VerifyOK             *bool           `json:"verify_ok,omitempty"`
	WebhookEvent         string          `json:"webhook_event,omitempty"`
	LastWebhookAt        *time.Time      `json:"last_webhook_at,omitempty"`
	LastWebhookID        string          `json:"last_webhook_id,omitempty"`
	LastWebhookPaymentID string          `json:"last_webhook_payment_id,omitempty"`
	Cart                 json.RawMessage `json:"cart,omitempty"`
	Client               json.RawMessage `json:"client,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// metaFields aliases Meta without its methods so encoding/json does not recurse.
type metaFields Meta

var knownMetaKeys = map[string]struct{}{
	"gateway_order_id":        {},
	"gateway_amount":          {},
	"gateway_currency":        {},
	"gateway_payment_id":      {},
	"gateway_signature":       {},
	"verify_ok":               {},
	"webhook_event":           {},
	"last_webhook_at":         {},
	"last_webhook_id":         {},
	"last_webhook_payment_id": {},
	"cart":                    {},
	"client":                  {},
}

func (m Meta) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(metaFields(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(m.Extra)+len(knownMetaKeys))
	for k, v := range m.Extra {
		if _, isKnown := knownMetaKeys[k]; !isKnown {
			merged[k] = v
		}
	}
	var typed map[string]json.RawMessage
	if err := json.Unmarshal(known, &typed); err != nil {
		return nil, err
	}
	for k, v := range typed {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	var fields metaFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, v := range all {
		if _, isKnown := knownMetaKeys[k]; isKnown {
			continue
		}
		if fields.Extra == nil {
			fields.Extra = make(map[string]json.RawMessage)
		}
		fields.Extra[k] = v
	}
	*m = Meta(fields)
	return nil
}

// Merge upserts every non-zero field of patch into a copy of m. Fields absent from the patch
// keep their stored value; Extra merges key by key.
func (m Meta) Merge(patch Meta) Meta {
	out := m.Clone()
	if patch.GatewayOrderID != "" {
		out.GatewayOrderID = patch.GatewayOrderID
	}
	if patch.GatewayAmount != 0 {
		out.GatewayAmount = patch.GatewayAmount
	}
	if patch.GatewayCurrency != "" {
		out.GatewayCurrency = patch.GatewayCurrency
	}
	if patch.GatewayPaymentID != "" {
		out.GatewayPaymentID = patch.GatewayPaymentID
	}
	if patch.GatewaySignature != "" {
		out.GatewaySignature = patch.GatewaySignature
	}
	if patch.VerifyOK != nil {
		v := *patch.VerifyOK
		out.VerifyOK = &v
	}
	if patch.WebhookEvent != "" {
		out.WebhookEvent = patch.WebhookEvent
	}
	if patch.LastWebhookAt != nil {
		t := *patch.LastWebhookAt
		out.LastWebhookAt = &t
	}
	if patch.LastWebhookID != "" {
		out.LastWebhookID = patch.LastWebhookID
	}
	if patch.LastWebhookPaymentID != "" {
		out.LastWebhookPaymentID = patch.LastWebhookPaymentID
	}
	if len(patch.Cart) > 0 {
		out.Cart = cloneRaw(patch.Cart)
	}
	if len(patch.Client) > 0 {
		out.Client = cloneRaw(patch.Client)
	}
	for k, v := range patch.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage, len(patch.Extra))
		}
		out.Extra[k] = cloneRaw(v)
	}
	return out
}

func (m Meta) Clone() Meta {
	out := m
	if m.VerifyOK != nil {
		v := *m.VerifyOK
		out.VerifyOK = &v
	}
	if m.LastWebhookAt != nil {
		t := *m.LastWebhookAt
		out.LastWebhookAt = &t
	}
	out.Cart = cloneRaw(m.Cart)
	out.Client = cloneRaw(m.Client)
	if m.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = cloneRaw(v)
		}
	}
	return out
}

// Bool is a helper for the optional verify flag.
func Bool(v bool) *bool { return &v }
