// Package character holds the character model and the save/edit workflow
// that uploads new media, persists the character document and compensates
// for partial failures.
package character

import (
	"fmt"

	"github.com/dmitrijs2005/arthub/internal/docstore"
)

// Character is the persisted character record: a name, a narrative, the
// ordered list of media asset ids, and its owner.
type Character struct {
	ID    string
	Name  string
	Story string
	Files []string
	Owner string
}

// toDocument maps a Character onto its stored shape:
//
//	{files: [...], name, story, roles: {owner}}
func toDocument(c Character) docstore.Document {
	return docstore.Document{
		"files": append([]string(nil), c.Files...),
		"name":  c.Name,
		"story": c.Story,
		"roles": map[string]any{"owner": c.Owner},
	}
}

// fromDocument decodes a stored character document. It tolerates both
// []string (memory store) and []any (JSON round-trip) file lists.
func fromDocument(id string, doc docstore.Document) (Character, error) {
	c := Character{ID: id}

	if v, ok := doc["name"].(string); ok {
		c.Name = v
	}
	if v, ok := doc["story"].(string); ok {
		c.Story = v
	}

	switch files := doc["files"].(type) {
	case nil:
	case []string:
		c.Files = append([]string(nil), files...)
	case []any:
		for _, f := range files {
			s, ok := f.(string)
			if !ok {
				return Character{}, fmt.Errorf("character %s: unexpected file id %T", id, f)
			}
			c.Files = append(c.Files, s)
		}
	default:
		return Character{}, fmt.Errorf("character %s: unexpected files field %T", id, files)
	}

	if roles, ok := doc["roles"].(map[string]any); ok {
		if owner, ok := roles["owner"].(string); ok {
			c.Owner = owner
		}
	}
	return c, nil
}
