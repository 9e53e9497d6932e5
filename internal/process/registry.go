package process

import "sync"

var live = struct {
	sync.Mutex
	handles map[*Handle]struct{}
}{handles: make(map[*Handle]struct{})}

func track(h *Handle) {
	live.Lock()
	defer live.Unlock()
	live.handles[h] = struct{}{}
}

func untrack(h *Handle) {
	live.Lock()
	defer live.Unlock()
	delete(live.handles, h)
}

// Live returns the number of children started and not yet killed.
func Live() int {
	live.Lock()
	defer live.Unlock()
	return len(live.handles)
}

// KillAll kills every child started by this process. Hosts call it on
// shutdown; the OS-level guard covers exits that skip it.
func KillAll() {
	live.Lock()
	handles := make([]*Handle, 0, len(live.handles))
	for h := range live.handles {
		handles = append(handles, h)
	}
	live.Unlock()

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h *Handle) {
			defer wg.Done()
			h.Kill()
		}(h)
	}
	wg.Wait()
}
