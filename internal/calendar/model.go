package calendar

import "time"

// Event is an entry on a family's shared calendar
type Event struct {
	ID           int64     `json:"id"`
	FamilyID     int64     `json:"family_id"`
	AuthorUserID *int64    `json:"author_user_id,omitempty"`
	Title        string    `json:"title"`
	Content      *string   `json:"content,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Color        *string   `json:"color,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Range is a half-open time window [Start, End). An event is inside the
// window when it overlaps it: start_time < End and end_time > Start.
type Range struct {
	Start time.Time
	End   time.Time
}

// normalizeTime drops sub-second precision and the zone so stored values
// compare consistently on every backend.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// ceilTime rounds t up to the next whole second. Used for exclusive upper
// bounds so a sub-second window end keeps every event starting before it.
func ceilTime(t time.Time) time.Time {
	s := normalizeTime(t)
	if s.Before(t) {
		s = s.Add(time.Second)
	}
	return s
}
