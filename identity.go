package corotask

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// processTag is a short, stable tag identifying this process instance.
var processTag = uuid.New().String()[:8]

// ProcessTag returns the process-instance tag. Identity names and trace
// output do not include it.
func ProcessTag() string {
	return processTag
}

// Identity is the process-wide id/name generator shared by Runner and
// Descriptor for diagnostics. Every Runner and every Descriptor embeds one.
// Grounded on the teacher's task.Manager, which hands out task IDs from a
// single atomic counter (task/manager.go: atomic.AddInt64(&m.nextTaskID, 1)).
type Identity struct {
	id   int64
	name string
}

var idCounters sync.Map // prefix string -> *atomic.Int64, lazily created per prefix

func counterFor(prefix string) *atomic.Int64 {
	if v, ok := idCounters.Load(prefix); ok {
		return v.(*atomic.Int64)
	}
	v, _ := idCounters.LoadOrStore(prefix, new(atomic.Int64))
	return v.(*atomic.Int64)
}

// NewIdentity mints a fresh id and "prefix-N" name. Ids are counted per
// prefix: an id is unique among identities minted with the same prefix, so
// the name, not the id alone, is unique across the process.
func NewIdentity(prefix string) Identity {
	n := counterFor(prefix).Add(1)
	return Identity{id: n, name: fmt.Sprintf("%s-%d", prefix, n)}
}

// ID returns the numeric id, unique among identities sharing this prefix.
func (i Identity) ID() int64 { return i.id }

// Name returns the "prefix-N" diagnostic name.
func (i Identity) Name() string { return i.name }
