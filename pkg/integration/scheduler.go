package integration

import (
	"context"
	"fmt"

	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type UserLister interface {
	GetAllUsers(ctx context.Context) ([]user.User, error)
}

// Scheduler refreshes the snapshots of every connected integration with a source
// on a cron schedule.
type Scheduler struct {
	cron         *cron.Cron
	spec         string
	users        UserLister
	integrations Service
	syncer       *Syncer
	clock        utils.Clock
}

func NewScheduler(spec string, users UserLister, integrations Service, syncer *Syncer, clock utils.Clock) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return &Scheduler{
		cron:         cron.New(),
		spec:         spec,
		users:        users,
		integrations: integrations,
		syncer:       syncer,
		clock:        clock,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		synced := s.SyncAll(context.Background())
		log.Debugf("integration sync finished, %d integration(s) refreshed", synced)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule integration sync: %w", err)
	}
	s.cron.Start()
	log.Infof("integration sync scheduled: %s", s.spec)
	return nil
}

// Stop waits for a running sync to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// SyncAll refreshes every connected integration of every user and returns how many
// were refreshed. A failing source is logged and skipped.
func (s *Scheduler) SyncAll(ctx context.Context) int {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		log.Errorf("integration sync: failed to list users: %v", err)
		return 0
	}

	synced := 0
	for _, u := range users {
		userCtx := user.WithUser(ctx, u)
		list, err := s.integrations.List(userCtx)
		if err != nil {
			log.Errorf("integration sync: failed to list integrations of user %s: %v", u.Uid, err)
			continue
		}
		for _, i := range list {
			if !i.IsConnected || !s.syncer.HasSource(i.Type) {
				continue
			}
			count, err := s.syncer.Sync(userCtx, u.Uid, i)
			if err != nil {
				log.Warnf("integration sync: skipping %s: %v", i.Id, err)
				continue
			}
			if err := s.integrations.MarkSynced(userCtx, i.Id, s.clock.Now()); err != nil {
				log.Errorf("integration sync: failed to mark %s synced: %v", i.Id, err)
				continue
			}
			log.Tracef("integration sync: %s refreshed with %d event(s)", i.Id, count)
			synced++
		}
	}
	return synced
}
