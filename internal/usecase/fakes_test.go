package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"finscreen/internal/domain"
)

type fakeRegistry struct {
	sources []domain.Source
	err     error
}

func (r *fakeRegistry) GetAll(ctx context.Context) ([]domain.Source, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.sources, nil
}

func (r *fakeRegistry) GetByID(ctx context.Context, id string) (domain.Source, error) {
	if r.err != nil {
		return domain.Source{}, r.err
	}
	for _, s := range r.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Source{}, fmt.Errorf("get %s: %w", id, domain.ErrNotFound)
}

type feedResponse struct {
	body  string
	err   error
	delay time.Duration
}

// fakeFetcher отдает заранее заданные ответы по URL и считает обращения.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]feedResponse
	calls     atomic.Int32
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxFlight.Load()
		if current <= seen || f.maxFlight.CompareAndSwap(seen, current) {
			break
		}
	}

	f.mu.Lock()
	resp, ok := f.responses[url]
	f.mu.Unlock()
	if !ok {
		return nil, &domain.NetworkError{URL: url, StatusCode: 404, Status: "Not Found"}
	}
	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-ctx.Done():
			return nil, &domain.NetworkError{URL: url, Err: ctx.Err()}
		}
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return []byte(resp.body), nil
}

func rssFeed(titles ...string) string {
	feed := `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>`
	for _, t := range titles {
		feed += "<item><title>" + t + "</title><link>https://example.com/" + t + "</link><author>desk</author>" +
			"<enclosure url=\"x\"/><image>https://img.example/" + t + ".png</image></item>"
	}
	return feed + "</channel></rss>"
}
