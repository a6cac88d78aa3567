package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

type redditUser struct {
	Name         string  `json:"name"`
	LinkKarma    int64   `json:"link_karma"`
	CommentKarma int64   `json:"comment_karma"`
	Created      float64 `json:"created_utc"`
}

func (u redditUser) createdUnix() int64 {
	return int64(u.Created)
}

type redditPost struct {
	Title     string  `json:"title"`
	Subreddit string  `json:"subreddit"`
	URL       string  `json:"url"`
	SelfText  string  `json:"selftext"`
	Created   float64 `json:"created_utc"`
}

func (p redditPost) createdUnix() int64 {
	return int64(p.Created)
}

// redditAPI is the remote collaborator: everything the filesystem knows
// about Reddit goes through these two calls.
type redditAPI interface {
	userAbout(name string) (redditUser, error)
	userPosts(name string, limit int) ([]redditPost, error)
}

var errNotFound = errors.New("no such user or resource")

func isNotFound(err error) bool {
	return errors.Cause(err) == errNotFound
}

type redditClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func newRedditClient(c *fsConfig) *redditClient {
	return &redditClient{
		baseURL:   c.BaseURL,
		userAgent: c.UserAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *redditClient) getJSON(path string, params url.Values, out interface{}) error {
	request, err := http.NewRequest(http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return errors.WithStack(err)
	}
	request.Header.Set("User-Agent", c.userAgent)
	response, err := c.client.Do(request)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() { _ = response.Body.Close() }()
	switch {
	case response.StatusCode == http.StatusNotFound:
		return errors.WithStack(errNotFound)
	case response.StatusCode != http.StatusOK:
		return errors.Errorf("reddit replied %q to %q", response.Status, path)
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (c *redditClient) userAbout(name string) (redditUser, error) {
	params := url.Values{}
	params.Set("raw_json", "1")
	var obj struct {
		Data redditUser `json:"data"`
	}
	if err := c.getJSON("/user/"+url.PathEscape(name)+"/about.json", params, &obj); err != nil {
		return redditUser{}, err
	}
	// Suspended accounts come back 200 with an empty record; treat them
	// the same as missing ones.
	if obj.Data.Name == "" {
		return redditUser{}, errors.WithStack(errNotFound)
	}
	return obj.Data, nil
}

func (c *redditClient) userPosts(name string, limit int) ([]redditPost, error) {
	params := url.Values{}
	params.Set("raw_json", "1")
	params.Set("limit", strconv.Itoa(limit))
	var obj struct {
		Data struct {
			Children []struct {
				Data redditPost `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := c.getJSON("/user/"+url.PathEscape(name)+"/submitted.json", params, &obj); err != nil {
		return nil, err
	}
	posts := make([]redditPost, 0, len(obj.Data.Children))
	for _, child := range obj.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}
