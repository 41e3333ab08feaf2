package scraper

import (
	"crypto/md5"
	"fmt"
	"strings"

	"hh-vacancies-go/internal/models"
)

// Deduplicator tracks vacancies already seen within one batch, keyed by normalized
// title and link. It is not safe for concurrent use.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]struct{}),
	}
}

// Observe marks v as seen and reports whether it had been seen before
func (d *Deduplicator) Observe(v models.Vacancy) (duplicate bool) {
	hash := vacancyHash(v)
	if _, ok := d.seen[hash]; ok {
		return true
	}
	d.seen[hash] = struct{}{}
	return false
}

func vacancyHash(v models.Vacancy) string {
	title := strings.ToLower(strings.TrimSpace(v.Title))
	link := strings.TrimRight(strings.TrimSpace(v.Link), "/")

	key := fmt.Sprintf("%s|%s", title, link)
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}
