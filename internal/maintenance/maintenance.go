// Package maintenance runs periodic housekeeping over the session store.
package maintenance

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/voicehub/voice-gateway/internal/metrics"
	"github.com/voicehub/voice-gateway/internal/session"
)

// Maintenance refreshes the session gauge and logs usage totals on a
// schedule. Sessions themselves are never expired: state is process-local
// and last-write-wins by contract.
type Maintenance struct {
	cron   *cron.Cron
	store  *session.Store
	logger *slog.Logger
}

func New(store *session.Store, logger *slog.Logger) *Maintenance {
	m := &Maintenance{
		cron:   cron.New(),
		store:  store,
		logger: logger,
	}
	m.scheduleSessionReport()
	return m
}

func (m *Maintenance) Start() {
	m.cron.Start()
}

func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *Maintenance) scheduleSessionReport() {
	_, err := m.cron.AddFunc("@hourly", func() {
		users := m.store.Len()
		metrics.ActiveSessions.Set(float64(users))
		m.logger.Info("session report", "users", users, "messages_processed", m.store.TotalProcessed())
	})
	if err != nil {
		m.logger.Error("failed to schedule session report", "error", err)
	}
}
