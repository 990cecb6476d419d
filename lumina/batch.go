package lumina

import (
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Action identifies what a batch operation does to its model.
type Action string

// The three operation kinds accepted by the nested-operations endpoint.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Operation is one step of an atomic batch. Scalar values inside ID or Data
// may be reference tokens of the form $N.fieldPath, standing in for a field
// of the result produced by the earlier operation at index N. Tokens are
// forwarded to the backend as literal strings; resolution is the backend's
// job, the client only checks well-formedness.
type Operation struct {
	Action Action `json:"action"`
	Model  string `json:"model"`
	ID     any    `json:"id,omitempty"`
	Data   Record `json:"data,omitempty"`
}

// Validate checks the shape rules for the operation's action: create takes
// data and no id, update takes both, delete takes an id and no data.
func (op Operation) Validate() error {
	return validation.ValidateStruct(&op,
		validation.Field(&op.Action, validation.Required, validation.In(ActionCreate, ActionUpdate, ActionDelete)),
		validation.Field(&op.Model, validation.Required),
		validation.Field(&op.ID,
			validation.When(op.Action == ActionCreate, validation.Nil).Else(validation.NotNil)),
		validation.Field(&op.Data,
			validation.When(op.Action == ActionDelete, validation.Empty).Else(validation.NotNil)),
	)
}

// referencePattern matches $<N>.<fieldPath> where N is a zero-based index
// into the batch's earlier results.
var referencePattern = regexp.MustCompile(`^\$(\d+)\.(.+)$`)

// reference is a parsed $N.fieldPath token. Parsing once at validation time
// turns the no-forward-reference check into a plain index comparison.
type reference struct {
	index     int
	fieldPath string
	token     string
}

// parseReference returns the parsed reference and true when v is a
// well-formed token; any other value is a literal.
func parseReference(v any) (reference, bool) {
	s, ok := v.(string)
	if !ok {
		return reference{}, false
	}
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return reference{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return reference{}, false
	}
	return reference{index: n, fieldPath: m[2], token: s}, true
}

// collectReferences walks v (scalars, maps, slices) and reports every
// reference token reachable from it.
func collectReferences(v any, visit func(reference)) {
	switch vv := v.(type) {
	case map[string]any:
		for _, item := range vv {
			collectReferences(item, visit)
		}
	case Record:
		for _, item := range vv {
			collectReferences(item, visit)
		}
	case []any:
		for _, item := range vv {
			collectReferences(item, visit)
		}
	default:
		if ref, ok := parseReference(v); ok {
			visit(ref)
		}
	}
}

// ValidateOperations runs the whole-batch static validation: shape rules per
// operation, then every reference token reachable in id/data checked for
// forward or self references. It scans the entire batch before
// anything is submitted and returns the first violation found.
func ValidateOperations(ops []Operation) error {
	if len(ops) == 0 {
		return newConfigurationError("operation batch must not be empty")
	}

	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return newConfigurationError("operation %d (%s %s): %v", i, op.Action, op.Model, err)
		}

		var refErr error
		check := func(ref reference) {
			if refErr == nil && (ref.index < 0 || ref.index >= i) {
				refErr = &InvalidReferenceError{Token: ref.token, OpIndex: i, RefIndex: ref.index}
			}
		}
		collectReferences(op.ID, check)
		collectReferences(op.Data, check)
		if refErr != nil {
			return refErr
		}
	}
	return nil
}

// touchedModels returns the distinct model names appearing in ops, in
// first-occurrence order. Used to mark cache invalidation exactly once per
// model after a successful batch.
func touchedModels(ops []Operation) []string {
	seen := make(map[string]struct{}, len(ops))
	var models []string
	for _, op := range ops {
		if _, ok := seen[op.Model]; ok {
			continue
		}
		seen[op.Model] = struct{}{}
		models = append(models, op.Model)
	}
	return models
}
