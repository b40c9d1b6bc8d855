// Package models defines the record collections kept by the TaskMarket data
// layer and the generic document envelope shared by all of them.
package models

import (
	"encoding/json"
	"time"
)

// Collection names. Local store keys and remote tables use the same names.
const (
	CollectionAccounts     = "accounts"
	CollectionTasks        = "tasks"
	CollectionApplications = "applications"
	CollectionMessages     = "messages"
	CollectionPayments     = "payments"
)

// Collections lists every synchronized collection in migration order.
func Collections() []string {
	return []string{
		CollectionAccounts,
		CollectionTasks,
		CollectionApplications,
		CollectionMessages,
		CollectionPayments,
	}
}

// Envelope field names shared by every record regardless of collection.
const (
	FieldID        = "id"
	FieldLocalID   = "localId"
	FieldRemoteID  = "_id"
	FieldUpdatedAt = "updatedAt"
)

// Doc is the schemaless record representation the sync engine operates on.
// Typed payloads convert to and from Doc at the service boundary.
type Doc map[string]any

// ID returns the local integer id, or 0 when unset.
func (d Doc) ID() int64 { return asInt64(d[FieldID]) }

// SetID sets the local integer id.
func (d Doc) SetID(id int64) { d[FieldID] = id }

// LocalID returns the localId mirror field, or 0 when unset.
func (d Doc) LocalID() int64 { return asInt64(d[FieldLocalID]) }

// SetLocalID sets the localId mirror field.
func (d Doc) SetLocalID(id int64) { d[FieldLocalID] = id }

// RemoteID returns the remote-assigned id, or "" when the record has never
// been materialized from the remote store.
func (d Doc) RemoteID() string {
	s, _ := d[FieldRemoteID].(string)
	return s
}

// SetRemoteID sets the remote-assigned id.
func (d Doc) SetRemoteID(id string) { d[FieldRemoteID] = id }

// UpdatedAt returns the record's last modification time, or the zero time
// when the field is missing or unparseable.
func (d Doc) UpdatedAt() time.Time {
	switch v := d[FieldUpdatedAt].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// SetUpdatedAt stores the modification time in RFC 3339 form so the value
// survives JSON round trips unchanged.
func (d Doc) SetUpdatedAt(t time.Time) {
	d[FieldUpdatedAt] = t.UTC().Format(time.RFC3339Nano)
}

// Clone returns a shallow copy of the document.
func (d Doc) Clone() Doc {
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// CloneDocs returns shallow copies of the given documents.
func CloneDocs(docs []Doc) []Doc {
	out := make([]Doc, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

// ToDoc converts a typed payload to its Doc form via a JSON round trip.
func ToDoc(v any) (Doc, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d Doc
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// FromDoc converts a Doc back into a typed payload via a JSON round trip.
func FromDoc(d Doc, v any) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// asInt64 coerces the numeric representations a Doc can carry after JSON,
// CBOR, or in-process handling back to int64.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
