package domain

// Classifier is a node in the read-only classification forest. The path
// always starts at the hierarchy root and ends at the node itself.
type Classifier struct {
	ID       string         `bson:"_id" json:"id"`
	Name     string         `bson:"name" json:"name"`
	RootID   string         `bson:"root_id" json:"root_id"`
	ParentID *string        `bson:"parent_id" json:"parent_id,omitempty"`
	Path     []string       `bson:"path" json:"path"`
	Level    int            `bson:"level" json:"level"`
	IsLeaf   bool           `bson:"is_leaf" json:"is_leaf"`
	Metadata map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
