package model

import "encoding/json"

// AutomationStatusField is the reference name of the work item field that
// records whether a test case has been automated.
const AutomationStatusField = "Microsoft.VSTS.TCM.AutomationStatus"

// Automation status values. Other values exist (e.g. "Planned") but are
// left untouched by the synchronizer.
const (
	AutomationStatusNotAutomated = "Not Automated"
	AutomationStatusAutomated    = "Automated"
	AutomationStatusPlanned      = "Planned"
)

// JSON patch operation names accepted by the work item tracking API.
const (
	PatchOpAdd     = "add"
	PatchOpRemove  = "remove"
	PatchOpReplace = "replace"
	PatchOpTest    = "test"
)

// WorkItem is a remote work item as returned by the work item tracking API.
type WorkItem struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
	URL    string         `json:"url,omitempty"`
}

// StringField returns the named field as a string. The second result is
// false when the field is absent or not a string.
func (w *WorkItem) StringField(name string) (string, bool) {
	if w == nil || w.Fields == nil {
		return "", false
	}
	v, ok := w.Fields[name].(string)
	return v, ok
}

// AutomationStatus returns the automation status field, or "" when absent.
func (w *WorkItem) AutomationStatus() string {
	status, _ := w.StringField(AutomationStatusField)
	return status
}

// PatchOperation is a single field-level edit in a JSON patch document.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	From  string `json:"from,omitempty"`
	Value any    `json:"value"`
}

// MarshalJSON omits value for remove, the only operation that takes none.
// Every other operation sends it, even when empty.
func (o PatchOperation) MarshalJSON() ([]byte, error) {
	type plain PatchOperation
	if o.Op == PatchOpRemove {
		return json.Marshal(struct {
			Op   string `json:"op"`
			Path string `json:"path"`
			From string `json:"from,omitempty"`
		}{o.Op, o.Path, o.From})
	}
	return json.Marshal(plain(o))
}

// PatchDocument is an ordered list of operations applied atomically.
type PatchDocument []PatchOperation

// FieldPath returns the patch path addressing a work item field.
func FieldPath(field string) string {
	return "/fields/" + field
}

// SetFieldPatch builds a single-operation document that sets field to value.
func SetFieldPatch(field string, value any) PatchDocument {
	return PatchDocument{{
		Op:    PatchOpAdd,
		Path:  FieldPath(field),
		Value: value,
	}}
}
