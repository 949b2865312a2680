package event

const (
	FSChanged     = "fs.changed"
	FSReloaded    = "fs.reloaded"
	RemoteChanged = "remote.changed"
)

// FSChangedEvent is emitted after a tree mutation
type FSChangedEvent struct {
	Op    string   `json:"op"`    // mkdir, create, write, append, delete, import
	Paths []string `json:"paths"` // tree paths affected
}

func (e FSChangedEvent) EventName() string { return FSChanged }

// FSReloadedEvent is emitted when the tree is replaced from its snapshot
type FSReloadedEvent struct{}

func (e FSReloadedEvent) EventName() string { return FSReloaded }

// RemoteChangedEvent is emitted when remote objects are added or removed
type RemoteChangedEvent struct {
	Op    string   `json:"op"` // push, delete
	Names []string `json:"names"`
}

func (e RemoteChangedEvent) EventName() string { return RemoteChanged }
