package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a stored record in its schema-flexible form.
type Document = map[string]any

// ToTransport makes a stored document JSON-safe: the internal "_id" becomes
// a string "id" and timestamps become ISO-8601 text. Nested documents are
// converted too. An empty document is returned as is.
func ToTransport(doc Document) Document {
	if len(doc) == 0 {
		return doc
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		if k == "_id" {
			out["id"] = idString(v)
			continue
		}
		out[k] = transportValue(v)
	}
	return out
}

// FormatTime renders t the way every timestamp leaves the API.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func idString(v any) any {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return transportValue(v)
	}
}

func transportValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return FormatTime(val)
	case primitive.DateTime:
		return FormatTime(val.Time())
	case primitive.ObjectID:
		return val.Hex()
	case map[string]any:
		return ToTransport(val)
	case primitive.M:
		return ToTransport(Document(val))
	case primitive.D:
		return ToTransport(Document(val.Map()))
	case primitive.A:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = transportValue(e)
		}
		return out
	default:
		return v
	}
}
