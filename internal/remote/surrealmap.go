package remote

import (
	"fmt"
	"strings"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"taskmarket/internal/models"
)

// recordID builds the driver record id for a document in a collection.
func recordID(collection, remoteID string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(collection, remoteID)
}

// toSurreal prepares a document for the wire. SurrealDB owns the "id" field
// (it is the record id, not our numeric id), so the local id and the remote
// id marker are stripped; everything else goes through as-is.
func toSurreal(doc models.Doc) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == models.FieldID || k == models.FieldRemoteID {
			continue
		}
		out[k] = v
	}
	return out
}

// fromSurreal converts a driver response map into a Doc: the record id the
// driver returns under "id" becomes the "_id" string the sync layer keys
// mappings on.
func fromSurreal(m map[string]any) models.Doc {
	doc := make(models.Doc, len(m))
	for k, v := range m {
		if k == "id" {
			if rid := ridString(v); rid != "" {
				doc.SetRemoteID(rid)
			}
			continue
		}
		doc[k] = v
	}
	return doc
}

// ridString extracts the identifier part of whatever the driver handed back
// as the record id.
func ridString(v any) string {
	switch rid := v.(type) {
	case surrealmodels.RecordID:
		return fmt.Sprint(rid.ID)
	case *surrealmodels.RecordID:
		if rid == nil {
			return ""
		}
		return fmt.Sprint(rid.ID)
	case string:
		// "table:key" form; keep only the key.
		if i := strings.IndexByte(rid, ':'); i >= 0 {
			return rid[i+1:]
		}
		return rid
	default:
		return ""
	}
}
