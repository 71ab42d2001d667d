package m3u

import (
	"net/url"
	"strings"
)

// Credentials are Xtream-style provider credentials recovered from a
// playlist URL.
type Credentials struct {
	Server   string
	Username string
	Password string
}

// ExtractCredentials recovers provider credentials from a playlist URL.
// Query parameters (username/password, user/pass) are tried first, then the
// two common path shapes: live|movie|series/{user}/{pass}/... and a bare
// {user}/{pass}/... where neither segment looks like a filename.
func ExtractCredentials(rawurl string) (Credentials, bool) {
	u, err := url.Parse(rawurl)
	if err != nil || u.Host == "" {
		return Credentials{}, false
	}
	server := u.Scheme + "://" + u.Host

	if creds, ok := credsFromQuery(u, server); ok {
		return creds, true
	}
	return credsFromPath(u, server)
}

func credsFromQuery(u *url.URL, server string) (Credentials, bool) {
	q := u.Query()
	user := q.Get("username")
	if user == "" {
		user = q.Get("user")
	}
	pass := q.Get("password")
	if pass == "" {
		pass = q.Get("pass")
	}
	if user == "" || pass == "" {
		return Credentials{}, false
	}
	return Credentials{Server: server, Username: user, Password: pass}, true
}

func credsFromPath(u *url.URL, server string) (Credentials, bool) {
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) >= 3 {
		switch strings.ToLower(segments[0]) {
		case "live", "movie", "series":
			return Credentials{Server: server, Username: segments[1], Password: segments[2]}, true
		}
	}

	// Bare user/pass path. Segments containing a dot are filenames, not
	// credentials.
	if len(segments) >= 2 {
		first, second := segments[0], segments[1]
		if !strings.Contains(first, ".") && !strings.Contains(second, ".") &&
			len(first) > 1 && len(second) > 1 {
			return Credentials{Server: server, Username: first, Password: second}, true
		}
	}

	return Credentials{}, false
}
