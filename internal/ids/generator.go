package ids

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Generator hands out per-request correlation identifiers, unique within the
// process for its lifetime: a monotonic counter plus a timestamp plus a
// random suffix. No cross-process uniqueness is promised.
type Generator struct {
	counter atomic.Uint64
}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) NextRequestID() string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("req-%d-%d-%s", time.Now().UnixMilli(), g.counter.Add(1), suffix)
}
