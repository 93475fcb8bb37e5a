package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"charge-relay/internal/models"
)

// ErrMalformedPayload is returned when a verified body cannot be read as the
// provider's JSON payload.
var ErrMalformedPayload = errors.New("malformed payload")

// Normalizer classifies verified webhook bodies and maps confirmed charges
// into job records.
type Normalizer struct {
	// Now supplies the fallback order id. Defaults to time.Now.
	Now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize parses raw and classifies it. The provider may nest type and data
// under "event" or send them at the top level; the nested form wins.
func (n *Normalizer) Normalize(raw []byte) (models.Event, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		if json.Valid(raw) {
			// Valid JSON without an object envelope carries no event type.
			return models.Unrecognized{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	envelope := objectField(body, "event")

	eventType := stringField(envelope, "type")
	if eventType == "" {
		eventType = stringField(body, "type")
	}
	if eventType != models.EventTypeChargeConfirmed {
		return models.Unrecognized{Type: eventType}, nil
	}

	rawCharge := objectRaw(envelope, "data")
	if rawCharge == nil {
		rawCharge = objectRaw(body, "data")
	}
	if rawCharge == nil {
		return nil, fmt.Errorf("%w: %s event without a charge object", ErrMalformedPayload, eventType)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rawCharge, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	metadata := objectField(fields, "metadata")
	if metadata == nil {
		metadata = map[string]json.RawMessage{}
	}

	return models.ChargeConfirmed{
		Charge: models.Charge{
			Raw:      rawCharge,
			Fields:   fields,
			Metadata: metadata,
		},
	}, nil
}

// BuildJob maps a confirmed charge into the record forwarded to the sink.
func (n *Normalizer) BuildJob(charge models.Charge) models.JobRecord {
	job := models.JobRecord{
		OrderID:   n.orderID(charge),
		Email:     optionalString(stringField(charge.Metadata, "purchaser_email")),
		TitleHint: optionalString(stringField(charge.Metadata, "title_hint")),
		Tone:      optionalString(stringField(charge.Metadata, "tone")),
		Length:    stringField(charge.Metadata, "length"),
		RawCharge: charge.Raw,
	}
	if job.Email == nil {
		job.Email = optionalString(stringField(objectField(charge.Fields, "customer"), "email"))
	}
	if keywords := charge.Metadata["must_include"]; truthy(keywords) {
		job.Keywords = keywords
	}
	if job.Length == "" {
		job.Length = models.DefaultLength
	}
	return job
}

func (n *Normalizer) orderID(charge models.Charge) string {
	if id := identifierField(charge.Fields, "id"); id != "" {
		return id
	}
	if code := identifierField(charge.Fields, "code"); code != "" {
		return code
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return strconv.FormatInt(now().UnixMilli(), 10)
}

// stringField returns m[key] when it is a non-empty JSON string.
func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// identifierField accepts a non-empty string or a non-zero number.
func identifierField(m map[string]json.RawMessage, key string) string {
	if s := stringField(m, key); s != "" {
		return s
	}
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return ""
	}
	if f, err := num.Float64(); err != nil || f == 0 {
		return ""
	}
	return num.String()
}

func objectRaw(m map[string]json.RawMessage, key string) json.RawMessage {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	return trimmed
}

func objectField(m map[string]json.RawMessage, key string) map[string]json.RawMessage {
	raw := objectRaw(m, key)
	if raw == nil {
		return nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// truthy follows the provider's loose semantics: null, false, 0 and "" are
// empty; objects and arrays always count.
func truthy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch string(trimmed) {
	case "null", "false", `""`:
		return false
	}
	if c := trimmed[0]; c == '-' || (c >= '0' && c <= '9') {
		f, err := strconv.ParseFloat(string(trimmed), 64)
		return err != nil || f != 0
	}
	return true
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
