package sheetredirect

import (
	"github.com/patrickmn/go-cache"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// NewRedirecter matches request paths against the tables in store. With
// useCache, decisions are memoized per table and path for ttl.
func NewRedirecter(store *Store, useCache bool, ttl time.Duration) *Redirecter {
	rd := &Redirecter{store: store}
	if useCache {
		if ttl <= 0 {
			ttl = DefaultRefreshInterval
		}
		rd.cache = cache.New(ttl, 2*ttl)
	}
	return rd
}

// Decide scans the current table for the first record whose link equals
// path. A panic while deciding is logged and treated as no match. Only
// matches are cached, so the cache never holds more paths than the table
// has links.
func (r *Redirecter) Decide(path string) (d Decision) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("Error in redirect middleware: %v", err)
			d = Decision{}
		}
	}()
	t := r.store.Get()
	var key string
	if r.cache != nil {
		// a table ID is never reused, so entries die with their table
		key = t.ID.String() + ":" + path
		if v, found := r.cache.Get(key); found {
			return v.(Decision)
		}
	}
	d = match(t.Records, path)
	if r.cache != nil && d.Matched {
		r.cache.SetDefault(key, d)
	}
	return d
}

func match(records []Record, path string) Decision {
	for _, rec := range records {
		log.Printf("Checking path: %s against link: %s", path, rec.Link)
		if rec.Link == path {
			return Decision{Matched: true, Location: destination(rec.Redirect)}
		}
	}
	return Decision{}
}

// destination prefixes https:// unless the redirect already has an http(s) scheme.
func destination(redirect string) string {
	if strings.HasPrefix(redirect, "http://") || strings.HasPrefix(redirect, "https://") {
		return redirect
	}
	return "https://" + redirect
}

// encodeLocation percent-encodes the bytes that may not appear in a URL,
// leaving reserved characters and existing %XX escapes alone.
func encodeLocation(loc string) string {
	var b strings.Builder
	for i := 0; i < len(loc); i++ {
		c := loc[i]
		switch {
		case c == '%':
			if i+2 < len(loc) && isHex(loc[i+1]) && isHex(loc[i+2]) {
				b.WriteByte(c)
			} else {
				b.WriteString("%25")
			}
		case urlSafe(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&15])
		}
	}
	return b.String()
}

const upperHex = "0123456789ABCDEF"

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func urlSafe(c byte) bool {
	switch {
	case c == 0x21, c >= 0x23 && c <= 0x3B, c == 0x3D, c >= 0x3F && c <= 0x5F,
		c >= 0x61 && c <= 0x7A, c == 0x7C, c == 0x7E:
		return true
	}
	return false
}

// requestPath is the path exactly as the client sent it, without the query.
func requestPath(req *http.Request) string {
	if strings.HasPrefix(req.RequestURI, "/") {
		p, _, _ := strings.Cut(req.RequestURI, "?")
		return p
	}
	return req.URL.EscapedPath()
}

// Middleware redirects matched paths with a 302 and hands everything else to next.
func (r *Redirecter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := requestPath(req)
		d := r.Decide(path)
		if !d.Matched {
			next.ServeHTTP(w, req)
			return
		}
		loc := encodeLocation(d.Location)
		log.Printf("Redirecting %q to %q", path, loc)
		http.Redirect(w, req, loc, http.StatusFound)
	})
}

func (r *Redirecter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Middleware(http.HandlerFunc(NotFound)).ServeHTTP(w, req)
}

func NotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, "Path not found.")
}
