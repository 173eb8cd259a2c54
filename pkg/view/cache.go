package view

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"sync"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
)

const defaultCacheSize = 128

type cacheKey struct {
	fingerprint uint64
	focus       int64
	location    string
	granularity Granularity
	weekStart   time.Weekday
}

// Cache memoizes FilterVisible keyed on its structural inputs. When the cache is full
// it is cleared instead of evicting single entries.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]Visible
	size    int
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Cache{entries: make(map[cacheKey]Visible, size), size: size}
}

func (c *Cache) FilterVisible(events []calendar.Event, focus time.Time, g Granularity, weekStart time.Weekday) Visible {
	key := cacheKey{
		fingerprint: Fingerprint(events),
		focus:       focus.UnixNano(),
		location:    focus.Location().String(),
		granularity: g,
		weekStart:   weekStart,
	}

	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v := FilterVisible(events, focus, g, weekStart)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.size {
		c.entries = make(map[cacheKey]Visible, c.size)
	}
	c.entries[key] = v
	return v
}

// Len returns the number of memoized results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint hashes every field of every event in order, so any edit to an event
// yields a different key.
func Fingerprint(events []calendar.Event) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeTime := func(t time.Time) {
		binary.LittleEndian.PutUint64(buf[:], uint64(t.UnixNano()))
		h.Write(buf[:])
		writeString(h, t.Location().String())
	}
	for _, e := range events {
		writeString(h, e.UID)
		writeTime(e.StartTime)
		writeTime(e.EndTime)
		writeString(h, e.Title)
		writeString(h, e.Description)
		writeString(h, string(e.Color))
		writeString(h, e.Recurrence)
		writeString(h, e.User.Id)
		writeString(h, e.User.Name)
		writeString(h, e.User.PicturePath)
		writeString(h, e.Integration.Type)
		writeString(h, e.Integration.Name)
		writeString(h, e.Integration.Icon)
		writeString(h, e.Integration.Color)
		writeString(h, e.Integration.ExternalId)
		writeString(h, e.Integration.URL)
	}
	return h.Sum64()
}

func writeString(w io.Writer, s string) {
	w.Write([]byte(s))
	w.Write([]byte{0})
}
