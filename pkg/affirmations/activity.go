package affirmations

import (
	"time"

	"github.com/uplift-labs/uplift/pkg/kvstore"
)

// localDateLayout formats device-local calendar dates for the daily memo.
const localDateLayout = "2006-01-02"

// ActivityStore owns the per-device UserActivity record: favorites, likes,
// locally submitted affirmations and the daily-special memo. Every mutator
// does a read-modify-write of the whole record, refreshes LastVisit and
// persists synchronously. A failed write is reported but not retried.
type ActivityStore struct {
	kv  *kvstore.Store
	now func() time.Time
}

// NewActivityStore creates an ActivityStore over kv. now may be nil, in
// which case time.Now is used.
func NewActivityStore(kv *kvstore.Store, now func() time.Time) *ActivityStore {
	if now == nil {
		now = time.Now
	}
	return &ActivityStore{kv: kv, now: now}
}

// Get reads the activity record, defaulting to an empty record.
func (a *ActivityStore) Get() UserActivity {
	return kvstore.Get(a.kv, KeyUserActivity, DefaultUserActivity(a.now()))
}

// Set overwrites the whole activity record.
func (a *ActivityStore) Set(activity UserActivity) bool {
	return kvstore.Set(a.kv, KeyUserActivity, activity)
}

// save stamps LastVisit and persists the record.
func (a *ActivityStore) save(activity UserActivity) bool {
	activity.LastVisit = a.now()
	return a.Set(activity)
}

// AddFavorite appends id to the favorites list. Adding an id that is
// already present is a no-op that still succeeds.
func (a *ActivityStore) AddFavorite(id string) bool {
	activity := a.Get()
	for _, fav := range activity.Favorites {
		if fav == id {
			return true
		}
	}
	activity.Favorites = append(activity.Favorites, id)
	return a.save(activity)
}

// RemoveFavorite filters id out of the favorites list. Removing an absent
// id is a no-op that still succeeds.
func (a *ActivityStore) RemoveFavorite(id string) bool {
	activity := a.Get()
	kept := activity.Favorites[:0]
	for _, fav := range activity.Favorites {
		if fav != id {
			kept = append(kept, fav)
		}
	}
	activity.Favorites = kept
	return a.save(activity)
}

// IsFavorite reports whether id is currently a favorite.
func (a *ActivityStore) IsFavorite(id string) bool {
	for _, fav := range a.Get().Favorites {
		if fav == id {
			return true
		}
	}
	return false
}

// ToggleFavorite flips favorite membership for id.
func (a *ActivityStore) ToggleFavorite(id string) bool {
	if a.IsFavorite(id) {
		return a.RemoveFavorite(id)
	}
	return a.AddFavorite(id)
}

// ToggleLike flips like membership for id. Applying it twice restores the
// original state.
func (a *ActivityStore) ToggleLike(id string) bool {
	activity := a.Get()

	liked := false
	kept := activity.Likes[:0]
	for _, like := range activity.Likes {
		if like == id {
			liked = true
			continue
		}
		kept = append(kept, like)
	}
	if liked {
		activity.Likes = kept
	} else {
		activity.Likes = append(activity.Likes, id)
	}

	return a.save(activity)
}

// IsLiked reports whether id is currently liked.
func (a *ActivityStore) IsLiked(id string) bool {
	for _, like := range a.Get().Likes {
		if like == id {
			return true
		}
	}
	return false
}

// AddUserAffirmation appends a locally authored affirmation to the record.
func (a *ActivityStore) AddUserAffirmation(item Affirmation) bool {
	activity := a.Get()
	activity.UserAffirmations = append(activity.UserAffirmations, item)
	return a.save(activity)
}

// RemoveUserAffirmation filters the affirmation with id out of the record.
func (a *ActivityStore) RemoveUserAffirmation(id string) bool {
	activity := a.Get()
	kept := activity.UserAffirmations[:0]
	for _, item := range activity.UserAffirmations {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	activity.UserAffirmations = kept
	return a.save(activity)
}

// SetDailySpecial memoizes id as today's featured affirmation, overwriting
// any memo from a prior date.
func (a *ActivityStore) SetDailySpecial(id string) bool {
	activity := a.Get()
	activity.DailySpecial = &DailySpecial{
		Date:          a.now().Format(localDateLayout),
		AffirmationID: id,
	}
	return a.save(activity)
}

// TodaySpecial returns the memoized affirmation id if its date equals the
// current device-local calendar date. A memo from another day signals that
// the engine must recompute.
func (a *ActivityStore) TodaySpecial() (string, bool) {
	activity := a.Get()
	if activity.DailySpecial == nil {
		return "", false
	}
	if activity.DailySpecial.Date != a.now().Format(localDateLayout) {
		return "", false
	}
	return activity.DailySpecial.AffirmationID, true
}

// Reset deletes the activity record.
func (a *ActivityStore) Reset() bool {
	return a.kv.Remove(KeyUserActivity)
}
