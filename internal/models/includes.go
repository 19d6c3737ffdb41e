// ABOUTME: Auxiliary reference set returned alongside tweets and its merge rule.
// ABOUTME: Merging de-duplicates by id (media_key for media) with first-seen-wins ordering.
package models

// Includes holds side-car objects needed to render tweets: authors, referenced
// tweets, and attached media.
type Includes struct {
	Users  []User  `json:"users,omitempty"`
	Tweets []Tweet `json:"tweets,omitempty"`
	Media  []Media `json:"media,omitempty"`
}

// IsEmpty reports whether no reference objects are present.
func (inc Includes) IsEmpty() bool {
	return len(inc.Users) == 0 && len(inc.Tweets) == 0 && len(inc.Media) == 0
}

// Merge appends entries from src whose key is not already present, preserving
// src order. Entries already in inc are never replaced.
func (inc *Includes) Merge(src Includes) {
	inc.Users = mergeByKey(inc.Users, src.Users, func(u User) string { return u.ID })
	inc.Tweets = mergeByKey(inc.Tweets, src.Tweets, func(t Tweet) string { return t.ID })
	inc.Media = mergeByKey(inc.Media, src.Media, func(m Media) string { return m.MediaKey })
}

// Clone returns a copy whose slices do not alias inc.
func (inc Includes) Clone() Includes {
	var out Includes
	out.Merge(inc)
	return out
}

// UserByID returns the included user with the given id.
func (inc Includes) UserByID(id string) (User, bool) {
	for _, u := range inc.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// TweetByID returns the included tweet with the given id.
func (inc Includes) TweetByID(id string) (Tweet, bool) {
	for _, t := range inc.Tweets {
		if t.ID == id {
			return t, true
		}
	}
	return Tweet{}, false
}

func mergeByKey[T any](dst, src []T, key func(T) string) []T {
	if len(src) == 0 {
		return dst
	}
	seen := make(map[string]struct{}, len(dst)+len(src))
	for _, item := range dst {
		seen[key(item)] = struct{}{}
	}
	for _, item := range src {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, item)
	}
	return dst
}
