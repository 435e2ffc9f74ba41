package bot

import "sync"

type server struct {
	roles   map[string]map[string]struct{}
	members map[string]map[string]struct{}
	m       *sync.RWMutex
	prefix  string
}

func (srv *server) setPrefix(prefix string) {
	srv.m.Lock()
	srv.prefix = prefix
	srv.m.Unlock()
}

func (srv *server) currentPrefix() string {
	srv.m.RLock()
	defer srv.m.RUnlock()

	return srv.prefix
}
