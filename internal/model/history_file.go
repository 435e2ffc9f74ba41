package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/schollz/jsonstore"
)

// FileHistory keeps mute history in a keyed JSON file
type FileHistory struct {
	store *jsonstore.JSONStore
	path  string
	m     sync.Mutex
}

var _ MuteHistoryStore = (*FileHistory)(nil)

// OpenFileHistory loads history file, starting empty when it does not exist yet
func OpenFileHistory(path string) (*FileHistory, error) {
	ks, err := jsonstore.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		ks, err = &jsonstore.JSONStore{Data: make(map[string]json.RawMessage)}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}

	return &FileHistory{
		store: ks,
		path:  path,
	}, nil
}

func (h *FileHistory) load(guildID, userID string) ([]string, error) {
	var list []string

	err := h.store.Get(muteKey(guildID, userID), &list)
	if err != nil {
		var nokey jsonstore.NoSuchKeyError
		if errors.As(err, &nokey) {
			return nil, nil
		}

		return nil, err
	}

	return list, nil
}

// AppendMute appends reason and flushes file
func (h *FileHistory) AppendMute(_ context.Context, guildID, userID, reason string) error {
	h.m.Lock()
	defer h.m.Unlock()

	list, err := h.load(guildID, userID)
	if err != nil {
		return err
	}

	err = h.store.Set(muteKey(guildID, userID), append(list, reason))
	if err != nil {
		return err
	}

	return jsonstore.Save(h.store, h.path)
}

// MuteHistory returns up to limit most recent reasons in chronological order
func (h *FileHistory) MuteHistory(_ context.Context, guildID, userID string, limit int) ([]string, error) {
	h.m.Lock()
	defer h.m.Unlock()

	list, err := h.load(guildID, userID)
	if err != nil {
		return nil, err
	}

	if len(list) == 0 {
		return nil, ErrRecordNotFound
	}

	return tail(list, limit), nil
}
