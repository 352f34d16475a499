package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/xmer/fitgirl-rss-reader/app/catalog"
	"github.com/xmer/fitgirl-rss-reader/app/feed"
	"github.com/xmer/fitgirl-rss-reader/app/release"
)

type fakeFeed struct {
	items []feed.Item
	err   error
}

var _ FeedSource = (*fakeFeed)(nil)

func (f *fakeFeed) Fetch(context.Context) ([]feed.Item, error) {
	return f.items, f.err
}

func (f *fakeFeed) URL() string {
	return "https://feed.example.com/"
}

type fakeSeen struct {
	mu       sync.Mutex
	seen     map[string]bool
	marked   []string
	isNewErr map[string]error
	markErr  error
}

var _ SeenStore = (*fakeSeen)(nil)

func newFakeSeen(ids ...string) *fakeSeen {
	s := &fakeSeen{seen: make(map[string]bool), isNewErr: make(map[string]error)}
	for _, id := range ids {
		s.seen[id] = true
	}
	return s
}

func (s *fakeSeen) IsNew(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.isNewErr[id]; err != nil {
		return false, err
	}
	return !s.seen[id], nil
}

func (s *fakeSeen) MarkSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	s.seen[id] = true
	s.marked = append(s.marked, id)
	return nil
}

type fakeCatalog struct {
	mu      sync.Mutex
	entries map[string]*catalog.Entry
	lookups []string
}

var _ Catalog = (*fakeCatalog)(nil)

func (c *fakeCatalog) Lookup(_ context.Context, name string) *catalog.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups = append(c.lookups, name)
	return c.entries[name]
}

type failureRecord struct {
	feedTitle  string
	parsedName string
}

type fakeFailures struct {
	mu      sync.Mutex
	records []failureRecord
}

var _ FailureRecorder = (*fakeFailures)(nil)

func (f *fakeFailures) Record(feedTitle, parsedName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, failureRecord{feedTitle: feedTitle, parsedName: parsedName})
	return nil
}

type publishCall struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu      sync.Mutex
	calls   []publishCall
	failFor map[string]bool
}

var _ Publisher = (*fakePublisher)(nil)

func (p *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rel, ok := payload.(release.Release); ok && p.failFor[rel.GUID] {
		return errors.New("broker unavailable")
	}
	p.calls = append(p.calls, publishCall{routingKey: routingKey, payload: payload})
	return nil
}

type fakeJournal struct {
	mu       sync.Mutex
	releases []release.Release
	err      error
}

var _ Journal = (*fakeJournal)(nil)

func (j *fakeJournal) RecordRelease(_ context.Context, r release.Release) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.releases = append(j.releases, r)
	return nil
}
