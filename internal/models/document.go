// ABOUTME: Document and chunk records flowing through the RAG pipeline
// ABOUTME: Known projected fields are typed; everything else rides in an open extension map
package models

import (
	"encoding/json"
	"maps"
)

// Document is a source record with a designated text field ("body"), an
// optional metadata mapping, and arbitrary extra fields. Identity is
// store-assigned on insert; the pipeline never needs a document ID.
type Document struct {
	Body     string         `bson:"body" json:"body"`
	Metadata map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`

	// Extra holds fields outside the projected set so that loosely
	// structured source records survive a round trip through the store.
	Extra map[string]any `bson:",inline" json:"-"`
}

// WithBody returns a copy of d whose text field is replaced. The copy is
// shallow in the same sense as copying a record: the top-level maps are
// cloned so mutating one chunk's fields never affects its siblings.
func (d Document) WithBody(text string) Document {
	return Document{
		Body:     text,
		Metadata: maps.Clone(d.Metadata),
		Extra:    maps.Clone(d.Extra),
	}
}

// UnmarshalJSON folds unknown keys into Extra so arbitrary source records
// can be loaded without a fixed schema.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if b, ok := raw["body"]; ok {
		if err := json.Unmarshal(b, &d.Body); err != nil {
			return err
		}
		delete(raw, "body")
	}
	if m, ok := raw["metadata"]; ok {
		if err := json.Unmarshal(m, &d.Metadata); err != nil {
			return err
		}
		delete(raw, "metadata")
	}
	if len(raw) > 0 {
		d.Extra = make(map[string]any, len(raw))
		for key, value := range raw {
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			d.Extra[key] = v
		}
	}
	return nil
}

// MarshalJSON flattens Extra back alongside the typed fields.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+2)
	maps.Copy(out, d.Extra)
	out["body"] = d.Body
	if d.Metadata != nil {
		out["metadata"] = d.Metadata
	}
	return json.Marshal(out)
}

// EmbeddedChunk is a chunk of a parent document plus its embedding vector.
// Produced once at ingestion and immutable afterwards; owned by the
// document store once inserted.
type EmbeddedChunk struct {
	Document  `bson:",inline"`
	Embedding []float64 `bson:"embedding" json:"embedding"`
}
