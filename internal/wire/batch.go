package wire

// BatchOpKind discriminates operations inside a batch write.
type BatchOpKind string

const (
	BatchUpsert BatchOpKind = "upsert"
	BatchDelete BatchOpKind = "delete"
)

// BatchOp is one operation in an atomic batch write. Upserts carry the
// document; deletes carry only the id.
type BatchOp struct {
	Kind BatchOpKind `json:"kind"`
	ID   string      `json:"id,omitempty"`
	Doc  Document    `json:"doc,omitempty"`
}
