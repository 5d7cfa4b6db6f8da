package client

import (
	"net/url"
	"strings"
	"sync"
)

// ViewState is the single source of truth for "what view is the user
// looking at": selected tag, sort criteria, open panel, hashtag filters.
// It is serialized as a query string so view state survives reloads and is
// shareable via link. The Store reads it but never owns it.
type ViewState interface {
	SortBy() string
	SortOrder() string
	SelectedTagName() string
	HashtagFilters() []string
	Action() string
	SetSortBy(sortBy, sortOrder string)
	SetSelectedTagName(name string)
	SetHashtagFilters(tags []string)
	SetAction(action string)
	Subscribe(fn func()) func()
}

// QueryState is an in-memory ViewState over url.Values with a history
// stack. Each setter pushes a new history entry; Back pops one, matching
// browser back-button behavior.
type QueryState struct {
	mu        sync.Mutex
	current   url.Values
	history   []url.Values
	listeners map[int]func()
	nextID    int
}

// NewQueryState parses an initial query string ("" for a blank view).
func NewQueryState(rawQuery string) *QueryState {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	return &QueryState{
		current:   values,
		listeners: make(map[int]func()),
	}
}

func (q *QueryState) SortBy() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if v := q.current.Get("sortBy"); v != "" {
		return v
	}
	return "timestamp"
}

func (q *QueryState) SortOrder() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if v := q.current.Get("sortOrder"); v != "" {
		return v
	}
	return "desc"
}

func (q *QueryState) SelectedTagName() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current.Get("tag")
}

func (q *QueryState) HashtagFilters() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	raw := q.current.Get("hashtags")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	filters := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			filters = append(filters, p)
		}
	}
	return filters
}

func (q *QueryState) Action() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current.Get("action")
}

// Encode returns the current query string, for embedding in a shareable
// link.
func (q *QueryState) Encode() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current.Encode()
}

func (q *QueryState) SetSortBy(sortBy, sortOrder string) {
	q.push(func(v url.Values) {
		v.Set("sortBy", sortBy)
		v.Set("sortOrder", sortOrder)
	})
}

func (q *QueryState) SetSelectedTagName(name string) {
	q.push(func(v url.Values) {
		if name == "" {
			v.Del("tag")
		} else {
			v.Set("tag", name)
		}
	})
}

func (q *QueryState) SetHashtagFilters(tags []string) {
	q.push(func(v url.Values) {
		if len(tags) == 0 {
			v.Del("hashtags")
		} else {
			v.Set("hashtags", strings.Join(tags, ","))
		}
	})
}

func (q *QueryState) SetAction(action string) {
	q.push(func(v url.Values) {
		if action == "" {
			v.Del("action")
		} else {
			v.Set("action", action)
		}
	})
}

// Back pops the most recent history entry. A no-op with no history.
func (q *QueryState) Back() {
	q.mu.Lock()
	if len(q.history) == 0 {
		q.mu.Unlock()
		return
	}
	q.current = q.history[len(q.history)-1]
	q.history = q.history[:len(q.history)-1]
	q.mu.Unlock()

	q.fire()
}

// Subscribe registers fn for every setter call and Back navigation. The
// returned function removes only this registration.
func (q *QueryState) Subscribe(fn func()) func() {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.listeners[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}
}

func (q *QueryState) push(mutate func(url.Values)) {
	q.mu.Lock()
	snapshot := cloneValues(q.current)
	q.history = append(q.history, snapshot)
	next := cloneValues(q.current)
	mutate(next)
	q.current = next
	q.mu.Unlock()

	q.fire()
}

func (q *QueryState) fire() {
	q.mu.Lock()
	fns := make([]func(), 0, len(q.listeners))
	for _, fn := range q.listeners {
		fns = append(fns, fn)
	}
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
