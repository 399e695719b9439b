package domain

// SessionState is the lifecycle of the working project.
type SessionState string

const (
	SessionUnsaved SessionState = "unsaved"
	SessionActive  SessionState = "active"
)

// SessionInfo is a read-only view of the builder session.
type SessionInfo struct {
	State       SessionState `json:"state"`
	ProjectID   string       `json:"projectId,omitempty"`
	ProjectName string       `json:"projectName,omitempty"`
	SelectedID  string       `json:"selectedId,omitempty"`
	DragOverID  string       `json:"dragOverId,omitempty"`
	Components  int          `json:"components"`
	SavePending bool         `json:"savePending"`
}
