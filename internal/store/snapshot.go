package store

import "encoding/json"

// snapshotVersion tags the snapshot format; no migrations are defined,
// the version guards against decoding a foreign blob.
const snapshotVersion = 1

type snapshot struct {
	Version int    `json:"version"`
	State   *State `json:"state"`
}

func encodeState(s *State) ([]byte, error) {
	return json.Marshal(snapshot{Version: snapshotVersion, State: s})
}

func decodeState(raw []byte) (*State, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	if snap.State == nil {
		return newState(), nil
	}
	snap.State.reindex()
	return snap.State, nil
}
