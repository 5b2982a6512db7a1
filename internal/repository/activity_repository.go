package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository/kv"
)

const (
	activityPrefix  = "activity:"
	activityListKey = "activities"
)

// ActivityRepository stores the most-recent-first audit trail with a hard
// retention cap. Entries pushed past the cap are returned to the caller so
// they can be archived before they vanish.
type ActivityRepository struct {
	store      kv.Store
	maxEntries int
}

func NewActivityRepository(store kv.Store, maxEntries int) *ActivityRepository {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &ActivityRepository{store: store, maxEntries: maxEntries}
}

// Append inserts the entry at the head of the trail and evicts anything past
// the retention cap from the tail. Evicted entries are returned.
func (r *ActivityRepository) Append(ctx context.Context, entry *models.ActivityEntry) ([]*models.ActivityEntry, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, activityPrefix+entry.EntryID, data, 0); err != nil {
		return nil, fmt.Errorf("failed to store activity entry: %w", err)
	}

	unlock := listLocks.lock(activityListKey)
	defer unlock()

	ids, err := readList(ctx, r.store, activityListKey)
	if err != nil {
		return nil, err
	}
	ids = append([]string{entry.EntryID}, ids...)

	var evictedIDs []string
	if len(ids) > r.maxEntries {
		evictedIDs = ids[r.maxEntries:]
		ids = ids[:r.maxEntries]
	}
	if err := writeList(ctx, r.store, activityListKey, ids); err != nil {
		return nil, err
	}

	if len(evictedIDs) == 0 {
		return nil, nil
	}
	evicted, err := r.getMany(ctx, evictedIDs)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(evictedIDs))
	for i, id := range evictedIDs {
		keys[i] = activityPrefix + id
	}
	if err := r.store.Delete(ctx, keys...); err != nil {
		return evicted, err
	}
	return evicted, nil
}

// List returns the trail, newest first.
func (r *ActivityRepository) List(ctx context.Context) ([]*models.ActivityEntry, error) {
	ids, err := readList(ctx, r.store, activityListKey)
	if err != nil {
		return nil, err
	}
	return r.getMany(ctx, ids)
}

func (r *ActivityRepository) Delete(ctx context.Context, entryID string) error {
	if err := r.store.Delete(ctx, activityPrefix+entryID); err != nil {
		return err
	}
	return removeFromList(ctx, r.store, activityListKey, entryID)
}

// DeleteMany removes the given entries in one pass over the list record.
func (r *ActivityRepository) DeleteMany(ctx context.Context, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	keys := make([]string, len(entryIDs))
	doomed := make(map[string]bool, len(entryIDs))
	for i, id := range entryIDs {
		keys[i] = activityPrefix + id
		doomed[id] = true
	}
	if err := r.store.Delete(ctx, keys...); err != nil {
		return err
	}

	unlock := listLocks.lock(activityListKey)
	defer unlock()

	ids, err := readList(ctx, r.store, activityListKey)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if !doomed[id] {
			kept = append(kept, id)
		}
	}
	return writeList(ctx, r.store, activityListKey, kept)
}

// DeleteAll clears the whole trail.
func (r *ActivityRepository) DeleteAll(ctx context.Context) error {
	unlock := listLocks.lock(activityListKey)
	defer unlock()

	ids, err := readList(ctx, r.store, activityListKey)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = activityPrefix + id
		}
		if err := r.store.Delete(ctx, keys...); err != nil {
			return err
		}
	}
	return writeList(ctx, r.store, activityListKey, []string{})
}

func (r *ActivityRepository) getMany(ctx context.Context, ids []string) ([]*models.ActivityEntry, error) {
	if len(ids) == 0 {
		return []*models.ActivityEntry{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = activityPrefix + id
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	entries := make([]*models.ActivityEntry, 0, len(values))
	for _, data := range values {
		if data == nil {
			continue
		}
		var entry models.ActivityEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
