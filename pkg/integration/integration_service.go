package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eventcal/eventcal/internal/event_bus"
	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/storage"
	"github.com/eventcal/eventcal/pkg/user"
	log "github.com/sirupsen/logrus"
)

const storageKeyPrefix = "calendar-integrations:"

type Service interface {
	List(ctx context.Context) ([]Integration, error)
	Connect(ctx context.Context, t Type) (Integration, error)
	Disconnect(ctx context.Context, id string) error
	GetByType(ctx context.Context, t Type) (Integration, bool, error)
	IsConnected(ctx context.Context, t Type) (bool, error)
	Configure(ctx context.Context, id string, credentials Credentials) (Integration, error)
	MarkSynced(ctx context.Context, id string, at time.Time) error
}

// ServiceImpl keeps the integration list of every user it has seen in memory.
// The in-memory list is the source of truth and is saved after every change.
type ServiceImpl struct {
	kv       storage.KeyValue
	eventBus *event_bus.EventBus
	clock    utils.Clock

	mu    sync.Mutex
	lists map[string][]Integration
}

func NewService(kv storage.KeyValue, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		kv:       kv,
		eventBus: eventBus,
		clock:    clock,
		lists:    make(map[string][]Integration),
	}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Integration, error) {
	userUid, err := currentUserUid(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.load(ctx, userUid)
	return append([]Integration(nil), list...), nil
}

// Connect marks the integration of type t as connected. An existing entry is reconnected,
// otherwise a new "<type>-<unixMillis>" entry is made from the catalog.
func (s *ServiceImpl) Connect(ctx context.Context, t Type) (Integration, error) {
	entry, err := Catalog(t)
	if err != nil {
		return Integration{}, err
	}
	userUid, err := currentUserUid(ctx)
	if err != nil {
		return Integration{}, err
	}

	now := s.clock.Now()
	s.mu.Lock()
	list := append([]Integration(nil), s.load(ctx, userUid)...)
	var connected Integration
	found := false
	for i := range list {
		if list[i].Type == t {
			list[i].IsConnected = true
			list[i].LastSync = &now
			connected = list[i]
			found = true
			break
		}
	}
	if !found {
		entry.Id = fmt.Sprintf("%s-%d", t, now.UnixMilli())
		entry.IsConnected = true
		entry.LastSync = &now
		list = append(list, entry)
		connected = entry
	}
	err = s.store(ctx, userUid, list)
	s.mu.Unlock()
	if err != nil {
		return Integration{}, err
	}

	log.Infof("integration %s connected for user %s", connected.Id, userUid)
	s.publish(ctx, event_bus.IntegrationConnected, userUid, connected)
	return connected, nil
}

// Disconnect marks the integration as disconnected. An unknown id is a no-op.
func (s *ServiceImpl) Disconnect(ctx context.Context, id string) error {
	userUid, err := currentUserUid(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	list := append([]Integration(nil), s.load(ctx, userUid)...)
	var disconnected *Integration
	for i := range list {
		if list[i].Id == id {
			list[i].IsConnected = false
			disconnected = &list[i]
		}
	}
	if disconnected == nil {
		s.mu.Unlock()
		log.Debugf("integration %s not found, nothing to disconnect", id)
		return nil
	}
	err = s.store(ctx, userUid, list)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, event_bus.IntegrationDisconnected, userUid, *disconnected)
	return nil
}

// GetByType returns the connected integration of type t.
func (s *ServiceImpl) GetByType(ctx context.Context, t Type) (Integration, bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return Integration{}, false, err
	}
	for _, i := range list {
		if i.Type == t && i.IsConnected {
			return i, true, nil
		}
	}
	return Integration{}, false, nil
}

func (s *ServiceImpl) IsConnected(ctx context.Context, t Type) (bool, error) {
	_, ok, err := s.GetByType(ctx, t)
	return ok, err
}

func (s *ServiceImpl) Configure(ctx context.Context, id string, credentials Credentials) (Integration, error) {
	return s.update(ctx, id, func(i *Integration) {
		if credentials.APIKey != "" {
			i.APIKey = credentials.APIKey
		}
		if credentials.RefreshToken != "" {
			i.RefreshToken = credentials.RefreshToken
		}
		if credentials.FeedURL != "" {
			i.FeedURL = credentials.FeedURL
		}
	})
}

func (s *ServiceImpl) MarkSynced(ctx context.Context, id string, at time.Time) error {
	_, err := s.update(ctx, id, func(i *Integration) {
		i.LastSync = &at
	})
	return err
}

func (s *ServiceImpl) update(ctx context.Context, id string, fn func(i *Integration)) (Integration, error) {
	userUid, err := currentUserUid(ctx)
	if err != nil {
		return Integration{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]Integration(nil), s.load(ctx, userUid)...)
	for i := range list {
		if list[i].Id == id {
			fn(&list[i])
			if err := s.store(ctx, userUid, list); err != nil {
				return Integration{}, err
			}
			return list[i], nil
		}
	}
	return Integration{}, fmt.Errorf("%w: %s", ErrIntegrationNotFound, id)
}

// load returns the list of userUid, reading it from storage on first use. Missing or
// corrupt data gives the defaults. Callers hold s.mu.
func (s *ServiceImpl) load(ctx context.Context, userUid string) []Integration {
	if list, ok := s.lists[userUid]; ok {
		return list
	}

	list := DefaultIntegrations()
	data, err := s.kv.Load(ctx, storageKeyPrefix+userUid)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Debugf("no integrations stored for user %s, using defaults", userUid)
	case err != nil:
		log.Errorf("failed to load integrations for user %s: %v", userUid, err)
		return list
	default:
		var stored []Integration
		if err := json.Unmarshal(data, &stored); err != nil {
			log.Errorf("failed to parse integrations of user %s, using defaults: %v", userUid, err)
		} else {
			list = stored
		}
	}
	s.lists[userUid] = list
	return list
}

// store replaces the list of userUid and saves it. Callers hold s.mu.
func (s *ServiceImpl) store(ctx context.Context, userUid string, list []Integration) error {
	s.lists[userUid] = list
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode integrations: %w", err)
	}
	if err := s.kv.Save(ctx, storageKeyPrefix+userUid, data); err != nil {
		log.Errorf("failed to save integrations of user %s: %v", userUid, err)
		return fmt.Errorf("failed to save integrations: %w", err)
	}
	return nil
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, userUid string, i Integration) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, event_bus.IntegrationChanged{
		UserUid:       userUid,
		IntegrationId: i.Id,
		Type:          string(i.Type),
	}))
	if err != nil {
		log.Errorf("failed to publish %s: %v", eventType, err)
	}
}

func currentUserUid(ctx context.Context) (string, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return currentUser.Uid, nil
}
