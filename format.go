package main

import (
	"bytes"
	"fmt"
	"time"
)

// renderField produces the canonical contents of a profile field file.
// Reported file sizes are computed from the same rendering, so attribute
// queries and reads can never disagree.
func renderField(kind resourceKind, user redditUser, now time.Time) []byte {
	switch kind {
	case linkKarmaKind:
		return []byte(fmt.Sprintf("%d\n", user.LinkKarma))
	case commentKarmaKind:
		return []byte(fmt.Sprintf("%d\n", user.CommentKarma))
	case usernameKind:
		return []byte(user.Name + "\n")
	case createdKind:
		return []byte(fmt.Sprintf("%d\n", user.createdUnix()))
	case summaryKind:
		return renderSummary(user, now)
	}
	return nil
}

func renderSummary(user redditUser, now time.Time) []byte {
	var text bytes.Buffer
	_, _ = fmt.Fprintf(&text, "%s\n", user.Name)
	_, _ = fmt.Fprintf(&text, "Link Karma: %d\n", user.LinkKarma)
	_, _ = fmt.Fprintf(&text, "Comment Karma: %d\n", user.CommentKarma)
	_, _ = fmt.Fprintf(&text, "A redditor for %d years\n", accountYears(user, now))
	return text.Bytes()
}

// accountYears is the account age in whole years: elapsed days over 365,
// rounded down.
func accountYears(user redditUser, now time.Time) int64 {
	days := int64(now.Sub(time.Unix(user.createdUnix(), 0)).Hours()) / 24
	return days / 365
}

// The formatting of posts is quite tentative and subject to change.
func renderPost(post redditPost) []byte {
	var text bytes.Buffer
	_, _ = fmt.Fprintf(
		&text,
		"%s — r/%s — %s\n",
		post.Title,
		post.Subreddit,
		time.Unix(post.createdUnix(), 0).UTC().Format(time.RFC3339),
	)
	if post.URL != "" {
		_, _ = fmt.Fprintf(&text, "Link: %s\n", post.URL)
	}
	if post.SelfText != "" {
		_, _ = fmt.Fprintf(&text, "\n%s\n", post.SelfText)
	}
	return text.Bytes()
}
