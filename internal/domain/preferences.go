package domain

import (
	"fmt"
	"strings"
)

// Preferences holds the travel preferences learned so far. Every field is
// independently nullable; nil means "not yet stated by the user".
type Preferences struct {
	Origin          *string `json:"origin"`
	Destination     *string `json:"destination"`
	TripDuration    *string `json:"trip_duration"`
	Budget          *string `json:"budget"`
	TimeOfYear      *string `json:"time_of_year"`
	TravelStyle     *string `json:"travel_style"`
	Participants    *string `json:"trip_participants"`
	Interests       *string `json:"interests"`
	Activities      *string `json:"activities"`
	Cuisine         *string `json:"cuisine_preferences"`
	Transportation  *string `json:"transportation_preferences"`
}

// fields returns pointers to every field, paired with its wire name, in a
// stable order. Merge and String both iterate this list so a new field only
// needs to be added here.
func (p *Preferences) fields() []struct {
	name string
	val  **string
} {
	return []struct {
		name string
		val  **string
	}{
		{"origin", &p.Origin},
		{"destination", &p.Destination},
		{"trip_duration", &p.TripDuration},
		{"budget", &p.Budget},
		{"time_of_year", &p.TimeOfYear},
		{"travel_style", &p.TravelStyle},
		{"trip_participants", &p.Participants},
		{"interests", &p.Interests},
		{"activities", &p.Activities},
		{"cuisine_preferences", &p.Cuisine},
		{"transportation_preferences", &p.Transportation},
	}
}

// Merge folds newly extracted values into the receiver, field by field.
// A non-nil incoming value overwrites; nil leaves the known value untouched.
// A field is therefore never cleared back to null once set.
func (p Preferences) Merge(extracted Preferences) Preferences {
	merged := p
	dst := merged.fields()
	src := extracted.fields()
	for i := range dst {
		if *src[i].val != nil {
			v := **src[i].val
			*dst[i].val = &v
		}
	}
	return merged
}

// IsEmpty reports whether no preference field has been set.
func (p Preferences) IsEmpty() bool {
	for _, f := range p.fields() {
		if *f.val != nil {
			return false
		}
	}
	return true
}

// String renders the known preferences for prompt interpolation. Unset
// fields render as "unknown" so the model never fills gaps by guessing.
func (p Preferences) String() string {
	var b strings.Builder
	for _, f := range p.fields() {
		v := "unknown"
		if *f.val != nil {
			v = **f.val
		}
		fmt.Fprintf(&b, "- %s: %s\n", f.name, v)
	}
	return strings.TrimRight(b.String(), "\n")
}
