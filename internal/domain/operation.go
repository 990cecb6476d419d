package domain

// Operation actions accepted by the nested-operations endpoint.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Operation is one step of an atomic batch. ID and scalar values inside
// Data may be $N.fieldPath reference tokens pointing at the result of an
// earlier operation; the server resolves them inside the transaction.
type Operation struct {
	Action string         `json:"action"`
	Model  string         `json:"model"`
	ID     any            `json:"id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}
