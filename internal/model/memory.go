package model

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
)

// MemHistory is an in-memory MuteHistoryStore
type MemHistory struct {
	Data map[string][]string
	m    sync.Mutex
}

// NewMemHistory returns empty in-memory history
func NewMemHistory() *MemHistory {
	return &MemHistory{
		Data: make(map[string][]string),
	}
}

// AppendMute implementation
func (h *MemHistory) AppendMute(_ context.Context, guildID, userID, reason string) error {
	h.m.Lock()
	defer h.m.Unlock()

	k := muteKey(guildID, userID)
	h.Data[k] = append(h.Data[k], reason)

	return nil
}

// MuteHistory implementation
func (h *MemHistory) MuteHistory(_ context.Context, guildID, userID string, limit int) ([]string, error) {
	h.m.Lock()
	defer h.m.Unlock()

	list, ok := h.Data[muteKey(guildID, userID)]
	if !ok || len(list) == 0 {
		return nil, ErrRecordNotFound
	}

	return tail(list, limit), nil
}

// MemEntitlements is an in-memory EntitlementStore keyed by discord id
type MemEntitlements struct {
	Records map[string]*EntitlementRecord
	Err     error
	m       sync.Mutex
	queries int
}

// NewMemEntitlements returns empty in-memory entitlement store
func NewMemEntitlements() *MemEntitlements {
	return &MemEntitlements{
		Records: make(map[string]*EntitlementRecord),
	}
}

// Put stores record for discord id
func (s *MemEntitlements) Put(discordID string, donatorEnd int64) {
	s.m.Lock()
	defer s.m.Unlock()

	s.Records[discordID] = &EntitlementRecord{
		ID:         int64(len(s.Records) + 1),
		DiscordID:  discordID,
		DonatorEnd: donatorEnd,
	}
}

// Queries returns number of lookups performed
func (s *MemEntitlements) Queries() int {
	s.m.Lock()
	defer s.m.Unlock()

	return s.queries
}

// Entitlement implementation
func (s *MemEntitlements) Entitlement(_ context.Context, discordID string) (*EntitlementRecord, error) {
	s.m.Lock()
	defer s.m.Unlock()

	s.queries++

	if s.Err != nil {
		return nil, fmt.Errorf("querying entitlement %s: %w", discordID, s.Err)
	}

	rec, ok := s.Records[discordID]
	if !ok {
		return nil, ErrRecordNotFound
	}

	c := *rec

	return &c, nil
}

// MemSettings is an in-memory Settings store
type MemSettings struct {
	Data map[string]string
	m    sync.Mutex
}

// NewMemSettings returns empty in-memory settings
func NewMemSettings() *MemSettings {
	return &MemSettings{
		Data: make(map[string]string),
	}
}

// ConfigGet implementation
func (s *MemSettings) ConfigGet(guildID, scope, key string) (string, error) {
	s.m.Lock()
	defer s.m.Unlock()

	return s.Data[fmt.Sprintf("%s.%s.%s", guildID, scope, key)], nil
}

// ConfigSet implementation
func (s *MemSettings) ConfigSet(guildID, scope, key, value string) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.Data[fmt.Sprintf("%s.%s.%s", guildID, scope, key)] = value

	return nil
}

// ConfigDel implementation
func (s *MemSettings) ConfigDel(guildID, scope, key string) error {
	s.m.Lock()
	defer s.m.Unlock()

	delete(s.Data, fmt.Sprintf("%s.%s.%s", guildID, scope, key))

	return nil
}

// ConfigList implementation, mask uses path.Match syntax
func (s *MemSettings) ConfigList(guildID, mask string) (map[string]string, error) {
	s.m.Lock()
	defer s.m.Unlock()

	prefix := guildID + "."
	res := make(map[string]string)

	for k, v := range s.Data {
		if !strings.HasPrefix(k, prefix) {
			continue
		}

		k = strings.TrimPrefix(k, prefix)

		ok, err := path.Match("*"+mask, k)
		if err != nil {
			return nil, err
		}

		if ok {
			res[k] = v
		}
	}

	return res, nil
}
