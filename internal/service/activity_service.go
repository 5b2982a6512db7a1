package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice-service/internal/client"
	"backoffice-service/internal/models"
	"backoffice-service/internal/permissions"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/util"
)

// ActivityLog records and serves the audit trail. Recording is best effort:
// a failed write is logged and swallowed so it never unwinds the business
// operation that triggered it.
type ActivityLog struct {
	entries  *repository.ActivityRepository
	producer *client.KafkaProducer
	archive  *client.ClickHouseClient
	counter  ActivityCounter
	logger   *zap.Logger
}

// ActivityCounter is an optional hook for metrics.
type ActivityCounter interface {
	ActivityRecorded()
}

func NewActivityLog(entries *repository.ActivityRepository, producer *client.KafkaProducer, archive *client.ClickHouseClient, logger *zap.Logger) *ActivityLog {
	return &ActivityLog{entries: entries, producer: producer, archive: archive, logger: logger}
}

func (l *ActivityLog) SetCounter(counter ActivityCounter) {
	l.counter = counter
}

// ActivityFilter narrows List output. ActorID is honored only for
// privileged callers; non-privileged accounts are always pinned to their
// own entries.
type ActivityFilter struct {
	Action  string
	ActorID string
}

// Record writes an audit entry with the actor's name denormalized at write
// time. Errors are logged, never returned.
func (l *ActivityLog) Record(ctx context.Context, actor *models.Account, action, description, details, ip string) {
	if ip == "" {
		ip = "Unknown"
	}
	entry := &models.ActivityEntry{
		EntryID:     uuid.New().String(),
		ActorID:     actor.AccountID,
		ActorName:   actor.Name,
		Action:      action,
		Description: description,
		Details:     details,
		IP:          ip,
		CreatedAt:   time.Now(),
	}

	evicted, err := l.entries.Append(ctx, entry)
	if err != nil {
		l.logger.Warn("failed to record activity entry",
			util.String("action", action), util.ErrorField(err))
		return
	}

	if l.counter != nil {
		l.counter.ActivityRecorded()
	}
	l.mirror(ctx, entry)
	if len(evicted) > 0 {
		l.archiveEvicted(ctx, evicted)
	}
}

// mirror publishes the entry to the activity topic when the producer is
// configured. Best effort.
func (l *ActivityLog) mirror(ctx context.Context, entry *models.ActivityEntry) {
	if l.producer == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := l.producer.Publish(ctx, []byte(entry.ActorID), data); err != nil {
		l.logger.Warn("failed to mirror activity entry", util.ErrorField(err))
	}
}

// archiveEvicted moves capacity-evicted entries to ClickHouse when the
// archive is configured. Entries are already deleted from the hot store;
// an archive failure only loses history past the retention cap.
func (l *ActivityLog) archiveEvicted(ctx context.Context, evicted []*models.ActivityEntry) {
	if l.archive == nil {
		return
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (entry_id, actor_id, actor_name, action, description, details, ip, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		l.archive.Table(),
	)
	for _, entry := range evicted {
		if err := l.archive.Exec(ctx, query,
			entry.EntryID, entry.ActorID, entry.ActorName, entry.Action,
			entry.Description, entry.Details, entry.IP, entry.CreatedAt,
		); err != nil {
			l.logger.Warn("failed to archive evicted activity entry",
				util.String("entryId", entry.EntryID), util.ErrorField(err))
		}
	}
}

// List returns the trail newest first. Non-privileged callers only ever see
// their own entries regardless of the filter.
func (l *ActivityLog) List(ctx context.Context, caller *models.Account, filter ActivityFilter) ([]*models.ActivityEntry, error) {
	entries, err := l.entries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	actorID := filter.ActorID
	if !permissions.IsPrivileged(caller.Role) {
		actorID = caller.AccountID
	}

	filtered := make([]*models.ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		if actorID != "" && entry.ActorID != actorID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered, nil
}

// Delete removes a single entry. Super Admin only.
func (l *ActivityLog) Delete(ctx context.Context, caller *models.Account, entryID string) error {
	if !permissions.IsSuperAdmin(caller.Role) {
		return ErrForbidden
	}
	if err := l.entries.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// BulkDelete removes a batch of entries. Super Admin only.
func (l *ActivityLog) BulkDelete(ctx context.Context, caller *models.Account, entryIDs []string) error {
	if !permissions.IsSuperAdmin(caller.Role) {
		return ErrForbidden
	}
	if len(entryIDs) == 0 {
		return validationError("no entry ids supplied")
	}
	if err := l.entries.DeleteMany(ctx, entryIDs); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// Purge clears the entire trail. Super Admin only; the purge itself is
// recorded afterwards so an empty trail still shows who emptied it.
func (l *ActivityLog) Purge(ctx context.Context, caller *models.Account, ip string) error {
	if !permissions.IsSuperAdmin(caller.Role) {
		return ErrForbidden
	}
	if err := l.entries.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	l.Record(ctx, caller, models.ActionActivityPurge, "cleared the activity log", "", ip)
	return nil
}

// Count reports the current trail length for the dashboard.
func (l *ActivityLog) Count(ctx context.Context) (int, error) {
	entries, err := l.entries.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
