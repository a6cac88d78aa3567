package main

import (
	"strings"
	"time"

	"github.com/jacobsa/timeutil"
	"github.com/pkg/errors"
)

type cachedErr struct {
	until time.Time
	err   error
}

// userRegistry assigns a stable small index to every user the kernel has
// referenced, in first-reference order. Indices are never reused or
// compacted, so inodes derived from them stay valid for the lifetime of
// the mount. Entries are never evicted either: the set of users a client
// chooses to browse is operator-bounded.
type userRegistry struct {
	api    redditAPI
	clock  timeutil.Clock
	users  []redditUser
	byName map[string]int // case-folded name to index

	// Caches error responses. Shells do all sorts of speculative
	// lookups and we don't want to call Reddit for every one of those.
	errors map[string]cachedErr
}

func newUserRegistry(api redditAPI, clock timeutil.Clock) *userRegistry {
	return &userRegistry{
		api:    api,
		clock:  clock,
		byName: make(map[string]int),
		errors: make(map[string]cachedErr),
	}
}

// resolve returns the index and profile for the named user, fetching the
// profile on first reference. Resolution is case-insensitive and fetches
// at most once per folded name. A failed fetch leaves the registry
// untouched: no index is reserved, no partial entry remains.
func (reg *userRegistry) resolve(name string) (int, redditUser, error) {
	folded := strings.ToLower(name)
	if i, ok := reg.byName[folded]; ok {
		return i, reg.users[i], nil
	}
	if cerr, ok := reg.errors[folded]; ok {
		if reg.clock.Now().Before(cerr.until) {
			return 0, redditUser{}, cerr.err
		}
		delete(reg.errors, folded)
	}
	user, err := reg.api.userAbout(folded)
	if err != nil {
		reg.cacheErrorResponse(folded, err)
		return 0, redditUser{}, err
	}
	i := len(reg.users)
	reg.users = append(reg.users, user)
	reg.byName[folded] = i
	return i, user, nil
}

func (reg *userRegistry) cacheErrorResponse(folded string, err error) {
	cerr := cachedErr{err: err}
	if isNotFound(err) {
		cerr.until = reg.clock.Now().Add(time.Hour)
	} else {
		cerr.until = reg.clock.Now().Add(5 * time.Minute)
	}
	reg.errors[folded] = cerr
}

// user returns the profile at a previously assigned index. An index the
// registry never assigned is in the same fault class as an unknown
// inode: it cannot come from a well-behaved kernel.
func (reg *userRegistry) user(i int) (redditUser, error) {
	if i < 0 || i >= len(reg.users) {
		return redditUser{}, errors.Wrapf(errInvalidInode, "user index %d never assigned", i)
	}
	return reg.users[i], nil
}

func (reg *userRegistry) count() int {
	return len(reg.users)
}

// postCache lazily holds each user's recent submissions, keyed by the
// resolved canonical name. Same fetch-once contract as the registry.
type postCache struct {
	api   redditAPI
	limit int
	posts map[string][]redditPost
}

func newPostCache(api redditAPI, limit int) *postCache {
	return &postCache{
		api:   api,
		limit: limit,
		posts: make(map[string][]redditPost),
	}
}

func (pc *postCache) postsFor(folded string) ([]redditPost, error) {
	if posts, ok := pc.posts[folded]; ok {
		return posts, nil
	}
	posts, err := pc.api.userPosts(folded, pc.limit)
	if err != nil {
		return nil, err
	}
	if len(posts) > pc.limit {
		posts = posts[:pc.limit]
	}
	pc.posts[folded] = posts
	return posts, nil
}
