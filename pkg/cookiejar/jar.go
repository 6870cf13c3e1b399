// Package cookiejar provides a serializable http.CookieJar.
//
// The standard library jar deliberately hides its contents, which makes
// it impossible to persist a session across runs or to discard expired
// cookies before reusing a saved session. This jar keeps cookies in a
// plain map guarded by a mutex, and can write itself to and restore
// itself from JSON.
package cookiejar

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cookie is the persisted form of a single cookie.
type Cookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Domain  string    `json:"domain"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires,omitempty"`
	Secure  bool      `json:"secure,omitempty"`
	HTTP    bool      `json:"http_only,omitempty"`
}

// key identifies a cookie within the jar.
type key struct {
	Domain string
	Name   string
	Path   string
}

// Jar is a thread safe cookie jar that can be saved and loaded.
type Jar struct {
	mu      sync.Mutex
	cookies map[key]Cookie
}

// New creates an empty jar.
func New() *Jar {
	return &Jar{cookies: make(map[key]Cookie)}
}

// SetCookies stores the cookies from a response against the request
// host. Cookies without an explicit domain stick to the exact host.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, c := range cookies {
		domain := canonicalDomain(c.Domain)
		if domain == "" {
			domain = strings.ToLower(u.Hostname())
		}
		path := c.Path
		if path == "" {
			path = "/"
		}

		k := key{Domain: domain, Name: c.Name, Path: path}

		// MaxAge<0 and an already-passed Expires both mean deletion.
		// Empty values are legitimate cookies and are kept.
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(j.cookies, k)
			continue
		}

		expires := c.Expires
		if c.MaxAge > 0 {
			expires = time.Now().Add(time.Duration(c.MaxAge) * time.Second)
		}

		j.cookies[k] = Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  domain,
			Path:    path,
			Expires: expires,
			Secure:  c.Secure,
			HTTP:    c.HttpOnly,
		}
	}
}

// Cookies returns the cookies applicable to a request url, most
// specific path first.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	host := strings.ToLower(u.Hostname())
	now := time.Now()

	var matched []Cookie
	for _, c := range j.cookies {
		if !domainMatches(host, c.Domain) {
			continue
		}
		if !pathMatches(u.Path, c.Path) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		matched = append(matched, c)
	}

	sort.Slice(matched, func(a, b int) bool {
		if len(matched[a].Path) != len(matched[b].Path) {
			return len(matched[a].Path) > len(matched[b].Path)
		}
		return matched[a].Name < matched[b].Name
	})

	out := make([]*http.Cookie, 0, len(matched))
	for _, c := range matched {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// SweepExpired removes every cookie whose expiry has passed and returns
// how many were dropped. Session cookies with no expiry are kept.
func (j *Jar) SweepExpired() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	var expired []key
	for k, c := range j.cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		delete(j.cookies, k)
	}
	return len(expired)
}

// Len reports how many cookies the jar holds.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.cookies)
}

// Save writes the jar as JSON.
func (j *Jar) Save(w io.Writer) error {
	j.mu.Lock()
	cookies := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		cookies = append(cookies, c)
	}
	j.mu.Unlock()

	sort.Slice(cookies, func(a, b int) bool {
		if cookies[a].Domain != cookies[b].Domain {
			return cookies[a].Domain < cookies[b].Domain
		}
		if cookies[a].Name != cookies[b].Name {
			return cookies[a].Name < cookies[b].Name
		}
		return cookies[a].Path < cookies[b].Path
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cookies)
}

// Load replaces the jar contents with cookies read from JSON.
func (j *Jar) Load(r io.Reader) error {
	var cookies []Cookie
	if err := json.NewDecoder(r).Decode(&cookies); err != nil {
		return fmt.Errorf("failed to decode cookies: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.cookies = make(map[key]Cookie, len(cookies))
	for _, c := range cookies {
		if c.Path == "" {
			c.Path = "/"
		}
		c.Domain = canonicalDomain(c.Domain)
		j.cookies[key{Domain: c.Domain, Name: c.Name, Path: c.Path}] = c
	}
	return nil
}

// SaveFile atomically writes the jar to a file. The write goes to a
// temp file in the same directory and is renamed into place.
func (j *Jar) SaveFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cookies-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp cookie file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := j.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set cookie file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cookie file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace cookie file: %w", err)
	}
	return nil
}

// LoadFile restores the jar from a file. A missing file leaves the jar
// empty and is not an error.
func (j *Jar) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer f.Close()
	return j.Load(f)
}

func canonicalDomain(domain string) string {
	return strings.ToLower(strings.TrimPrefix(domain, "."))
}

// domainMatches implements cookie domain matching: the host either
// equals the cookie domain or is a subdomain of it.
func domainMatches(host, domain string) bool {
	if host == domain {
		return true
	}
	return strings.HasSuffix(host, "."+domain)
}

// pathMatches implements cookie path matching per RFC 6265.
func pathMatches(requestPath, cookiePath string) bool {
	if requestPath == "" {
		requestPath = "/"
	}
	if requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}
