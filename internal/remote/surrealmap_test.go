package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"taskmarket/internal/models"
)

func TestToSurrealStripsIdentityFields(t *testing.T) {
	doc := models.Doc{
		"id":      int64(42),
		"_id":     "abc123",
		"localId": int64(42),
		"title":   "fix the roof",
	}

	out := toSurreal(doc)

	assert.NotContains(t, out, "id")
	assert.NotContains(t, out, "_id")
	assert.Equal(t, int64(42), out["localId"])
	assert.Equal(t, "fix the roof", out["title"])

	// original untouched
	assert.Contains(t, doc, "id")
}

func TestFromSurrealConvertsRecordID(t *testing.T) {
	tests := []struct {
		name string
		id   any
		want string
	}{
		{"value record id", surrealmodels.NewRecordID("tasks", "x9z"), "x9z"},
		{"pointer record id", &surrealmodels.RecordID{Table: "tasks", ID: "p7"}, "p7"},
		{"string with table prefix", "tasks:k1", "k1"},
		{"bare string", "k2", "k2"},
		{"numeric record id", surrealmodels.NewRecordID("tasks", 15), "15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := fromSurreal(map[string]any{"id": tt.id, "title": "t"})
			assert.Equal(t, tt.want, doc.RemoteID())
			assert.NotContains(t, doc, "id")
			assert.Equal(t, "t", doc["title"])
		})
	}
}

func TestFromSurrealWithoutID(t *testing.T) {
	doc := fromSurreal(map[string]any{"title": "t"})
	assert.Empty(t, doc.RemoteID())
}
