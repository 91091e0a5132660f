package storage

import "encoding/json"

// Memory implements Store in process. Values round-trip through JSON so it
// behaves like the sqlite store, including what survives marshaling.
type Memory struct {
	m map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]json.RawMessage)}
}

func (s *Memory) Get(key string, dest any) error {
	data, ok := s.m[key]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (s *Memory) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.m[key] = data
	return nil
}

func (s *Memory) Remove(key string) error {
	delete(s.m, key)
	return nil
}
