package storage

import "sync"

// Memory keeps snapshots in process memory. Used when no database is
// configured: backups still run, they just do not survive a restart.
type Memory struct {
	mu    sync.Mutex
	snaps map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		snaps: make(map[string][]byte),
	}
}

func (s *Memory) Save(roomID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.snaps[roomID] = buf

	return nil
}

func (s *Memory) LoadAll() (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := make(map[string][]byte, len(s.snaps))
	for id, data := range s.snaps {
		snaps[id] = data
	}

	return snaps, nil
}

func (s *Memory) Delete(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snaps, roomID)

	return nil
}
