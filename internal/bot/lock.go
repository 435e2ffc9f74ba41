package bot

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemberLocks serialises role mutations per member id
type MemberLocks struct {
	locks *xsync.MapOf[string, *sync.Mutex]
}

// NewMemberLocks returns empty lock set
func NewMemberLocks() *MemberLocks {
	return &MemberLocks{
		locks: xsync.NewMapOf[string, *sync.Mutex](),
	}
}

// Lock acquires lock for member id and returns its release func
func (l *MemberLocks) Lock(userID string) (unlock func()) {
	mu, _ := l.locks.LoadOrCompute(userID, func() *sync.Mutex {
		return &sync.Mutex{}
	})

	mu.Lock()

	return mu.Unlock
}
