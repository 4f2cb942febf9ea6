package secrets

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	gkp "github.com/tobischo/gokeepasslib/v3"
	w "github.com/tobischo/gokeepasslib/v3/wrappers"
)

// field maps one standard KeePass value onto Entry.
type field struct {
	key       string
	protected bool
	get       func(*Entry) string
	set       func(*Entry, string)
}

var fields = []field{
	{"Title", false, func(e *Entry) string { return e.Title }, func(e *Entry, s string) { e.Title = s }},
	{"UserName", false, func(e *Entry) string { return e.UserName }, func(e *Entry, s string) { e.UserName = s }},
	{"Password", true, func(e *Entry) string { return e.Password }, func(e *Entry, s string) { e.Password = s }},
	{"URL", false, func(e *Entry) string { return e.URL }, func(e *Entry, s string) { e.URL = s }},
	{"Notes", false, func(e *Entry) string { return e.Notes }, func(e *Entry, s string) { e.Notes = s }},
}

func lookupField(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

func decodeEntry(ge gkp.Entry) *Entry {
	e := &Entry{CustomAttributes: map[string]string{}}
	for _, v := range ge.Values {
		if f, ok := lookupField(v.Key); ok {
			f.set(e, v.Value.Content)
			continue
		}
		e.CustomAttributes[v.Key] = v.Value.Content
	}
	return e
}

func encodeEntry(e *Entry, title string) gkp.Entry {
	ge := gkp.NewEntry()
	named := *e
	named.Title = title
	for _, f := range fields {
		ge.Values = append(ge.Values, value(f.key, f.get(&named), f.protected))
	}

	keys := make([]string, 0, len(e.CustomAttributes))
	for k := range e.CustomAttributes {
		if _, standard := lookupField(k); !standard {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		ge.Values = append(ge.Values, value(k, e.CustomAttributes[k], false))
	}
	return ge
}

func value(key, content string, protected bool) gkp.ValueData {
	return gkp.ValueData{
		Key:   key,
		Value: gkp.V{Content: content, Protected: w.NewBoolWrapper(protected)},
	}
}

// normaliseBackend cleans up a backend account before it is stored: the URL
// loses surrounding blanks and trailing slashes and must be http(s), the
// token loses pasted whitespace, and a timezone must be a known zone.
// Placeholder accounts without a URL are allowed.
func normaliseBackend(p entryPath, e *Entry) error {
	e.URL = strings.TrimRight(strings.TrimSpace(e.URL), "/")
	e.Password = strings.TrimSpace(e.Password)

	if e.URL != "" {
		u, err := url.Parse(e.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("secrets: %s: URL %q must be an http or https address", p, e.URL)
		}
	}
	if tz := e.CustomAttributes[AttrTimezone]; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("secrets: %s: unknown timezone %q", p, tz)
		}
	}

	attrs := make(map[string]string, len(e.CustomAttributes))
	for k, v := range e.CustomAttributes {
		attrs[k] = strings.TrimSpace(v)
	}
	e.CustomAttributes = attrs
	return nil
}
