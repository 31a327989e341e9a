// file: internals/features/events/store/live_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Toggle results, matching the wire strings of the legacy check-in desk.
const (
	StatusCheckedIn  = "CHECKED IN"
	StatusCheckedOut = "CHECKED OUT"
)

// ErrLiveStoreUnavailable means Redis was not configured at boot.
var ErrLiveStoreUnavailable = errors.New("live attendance store unavailable")

// togglePresenceScript flips a student's membership in the checked-in set
// and stamps the matching time hash, all in one atomic script so concurrent
// toggles for the same (event, student) pair serialize inside Redis.
// The first check-in wins the checkin_times slot (HSETNX): a student who
// leaves and comes back keeps their original arrival time.
var togglePresenceScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
  redis.call('SREM', KEYS[1], ARGV[1])
  redis.call('HSET', KEYS[3], ARGV[1], ARGV[2])
  return 'CHECKED OUT'
else
  redis.call('SADD', KEYS[1], ARGV[1])
  redis.call('HSETNX', KEYS[2], ARGV[1], ARGV[2])
  return 'CHECKED IN'
end
`)

// LivePresence is the raw snapshot of one event's live attendance keys.
// Student ids and timestamps stay strings here; the finalizer parses them.
type LivePresence struct {
	CheckedIn      []string          `json:"checked_in"`
	CheckedInCount int               `json:"checked_in_count"`
	CheckinTimes   map[string]string `json:"checkin_times"`
	CheckoutTimes  map[string]string `json:"checkout_times"`
}

// LiveAttendanceStore is the Redis adapter for in-progress event state.
// Everything is keyed per event and deleted as a unit by Clear.
type LiveAttendanceStore struct {
	RDB *redis.Client
}

func NewLiveAttendanceStore(rdb *redis.Client) *LiveAttendanceStore {
	return &LiveAttendanceStore{RDB: rdb}
}

func checkedInKey(eventID uuid.UUID) string  { return fmt.Sprintf("event:%s:checked_in", eventID) }
func checkinKey(eventID uuid.UUID) string    { return fmt.Sprintf("event:%s:checkin_times", eventID) }
func checkoutKey(eventID uuid.UUID) string   { return fmt.Sprintf("event:%s:checkout_times", eventID) }
func finalizeLockKey(eventID uuid.UUID) string {
	return fmt.Sprintf("event:%s:finalize_lock", eventID)
}

func (s *LiveAttendanceStore) available() error {
	if s.RDB == nil {
		return ErrLiveStoreUnavailable
	}
	return nil
}

// TogglePresence checks the student in or out and returns the new status.
func (s *LiveAttendanceStore) TogglePresence(ctx context.Context, eventID, studentID uuid.UUID) (string, error) {
	if err := s.available(); err != nil {
		return "", err
	}
	keys := []string{checkedInKey(eventID), checkinKey(eventID), checkoutKey(eventID)}
	res, err := togglePresenceScript.Run(ctx, s.RDB, keys,
		studentID.String(), time.Now().UTC().Format(time.RFC3339Nano)).Text()
	if err != nil {
		return "", err
	}
	return res, nil
}

func (s *LiveAttendanceStore) GetPresence(ctx context.Context, eventID uuid.UUID) (*LivePresence, error) {
	if err := s.available(); err != nil {
		return nil, err
	}

	pipe := s.RDB.Pipeline()
	membersCmd := pipe.SMembers(ctx, checkedInKey(eventID))
	checkinsCmd := pipe.HGetAll(ctx, checkinKey(eventID))
	checkoutsCmd := pipe.HGetAll(ctx, checkoutKey(eventID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	members := membersCmd.Val()
	return &LivePresence{
		CheckedIn:      members,
		CheckedInCount: len(members),
		CheckinTimes:   checkinsCmd.Val(),
		CheckoutTimes:  checkoutsCmd.Val(),
	}, nil
}

// Clear deletes the whole live record for the event in one DEL.
func (s *LiveAttendanceStore) Clear(ctx context.Context, eventID uuid.UUID) error {
	if err := s.available(); err != nil {
		return err
	}
	return s.RDB.Del(ctx,
		checkedInKey(eventID), checkinKey(eventID), checkoutKey(eventID)).Err()
}

// RandomWinner picks a random currently-checked-in student, or "" when the
// set is empty.
func (s *LiveAttendanceStore) RandomWinner(ctx context.Context, eventID uuid.UUID) (string, error) {
	if err := s.available(); err != nil {
		return "", err
	}
	winner, err := s.RDB.SRandMember(ctx, checkedInKey(eventID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return winner, nil
}

/* ===================== FINALIZE LOCK ===================== */

// AcquireFinalizeLock takes the per-event finalize lock. Returns false when
// another finalize already holds it. The TTL is a dead-man switch for a
// crashed finalizer, not a lease to renew.
func (s *LiveAttendanceStore) AcquireFinalizeLock(ctx context.Context, eventID uuid.UUID, ttl time.Duration) (bool, error) {
	if err := s.available(); err != nil {
		return false, err
	}
	return s.RDB.SetNX(ctx, finalizeLockKey(eventID), "1", ttl).Result()
}

func (s *LiveAttendanceStore) ReleaseFinalizeLock(ctx context.Context, eventID uuid.UUID) error {
	if err := s.available(); err != nil {
		return err
	}
	return s.RDB.Del(ctx, finalizeLockKey(eventID)).Err()
}
