package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/streamhaven/iptvcat/internal/epg"
)

// Config holds provider and ingest settings.
// Load from env and/or a .env file via LoadEnvFile.
type Config struct {
	// Provider (M3U / Xtream panel)
	ProviderBaseURL string // e.g. http://provider:8080
	ProviderUser    string
	ProviderPass    string
	M3UURL          string // optional: full M3U URL if different from base
	XMLTVURL        string // optional: external XMLTV source; built from the panel otherwise

	// Download behaviour
	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string
	// InsecureTLS skips certificate verification; many panels run self-signed.
	InsecureTLS bool

	// Guide behaviour
	TimeOffsetHours float64 // shift guide queries for panels publishing in another zone
	AutoUpdate      epg.AutoUpdate

	// Paths
	CacheDir string // e.g. /var/cache/iptvcat

	// Metrics
	MetricsListen string // e.g. :9090; empty disables the scrape endpoint
}

// Load reads config from environment. Call LoadEnvFile(".env") before Load()
// to use a .env file. If ProviderUser or ProviderPass are empty, Load tries
// IPTVCAT_SUBSCRIPTION_FILE (or the default path) with "Username:" /
// "Password:" lines.
func Load() *Config {
	c := &Config{
		ProviderBaseURL: os.Getenv("IPTVCAT_PROVIDER_URL"),
		ProviderUser:    os.Getenv("IPTVCAT_PROVIDER_USER"),
		ProviderPass:    os.Getenv("IPTVCAT_PROVIDER_PASS"),
		M3UURL:          os.Getenv("IPTVCAT_M3U_URL"),
		XMLTVURL:        os.Getenv("IPTVCAT_XMLTV_URL"),
		MaxRetries:      getEnvInt("IPTVCAT_MAX_RETRIES", 3),
		RetryDelay:      getEnvDuration("IPTVCAT_RETRY_DELAY", 2*time.Second),
		ConnectTimeout:  getEnvDuration("IPTVCAT_CONNECT_TIMEOUT", 30*time.Second),
		ReadTimeout:     getEnvDuration("IPTVCAT_READ_TIMEOUT", 120*time.Second),
		UserAgent:       getEnv("IPTVCAT_USER_AGENT", "iptvcat/1.0"),
		InsecureTLS:     getEnvBool("IPTVCAT_INSECURE_TLS", false),
		TimeOffsetHours: getEnvFloat("IPTVCAT_TIME_OFFSET_HOURS", 0),
		AutoUpdate:      epg.AutoUpdateFromIndex(getEnvInt("IPTVCAT_EPG_AUTO_UPDATE", int(epg.UpdateDaily))),
		CacheDir:        getEnv("IPTVCAT_CACHE", "/var/cache/iptvcat"),
		MetricsListen:   os.Getenv("IPTVCAT_METRICS_LISTEN"),
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	// Subscription file fallback for renewals handed out as plain text.
	if c.ProviderUser == "" || c.ProviderPass == "" {
		if user, pass, err := readSubscriptionFile(getEnv("IPTVCAT_SUBSCRIPTION_FILE", "")); err == nil {
			if c.ProviderUser == "" {
				c.ProviderUser = user
			}
			if c.ProviderPass == "" {
				c.ProviderPass = pass
			}
		}
	}
	return c
}

// readSubscriptionFile reads "Username: x" and "Password: x" from path. path
// may be empty to try the default. When path is empty, globs
// ~/Documents/iptv.subscription.*.txt and uses the alphabetically last match
// (i.e. highest year), so the file keeps working across year-end renewals.
func readSubscriptionFile(path string) (user, pass string, err error) {
	if path == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "", "", os.ErrNotExist
		}
		pattern := filepath.Join(home, "Documents", "iptv.subscription.*.txt")
		matches, globErr := filepath.Glob(pattern)
		if globErr != nil || len(matches) == 0 {
			return "", "", os.ErrNotExist
		}
		sort.Strings(matches)
		path = matches[len(matches)-1]
	}
	path = filepath.Clean(path)
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "Username:") {
			user = strings.TrimSpace(strings.TrimPrefix(line, "Username:"))
		} else if strings.HasPrefix(line, "Password:") {
			pass = strings.TrimSpace(strings.TrimPrefix(line, "Password:"))
		}
	}
	if err := sc.Err(); err != nil {
		return "", "", err
	}
	if user == "" || pass == "" {
		return "", "", fmt.Errorf("subscription file: missing Username or Password")
	}
	return user, pass, nil
}

// M3UURLOrBuild returns M3UURL if set, otherwise builds from ProviderBaseURL + user + pass.
func (c *Config) M3UURLOrBuild() string {
	urls := c.M3UURLsOrBuild()
	if len(urls) > 0 {
		return urls[0]
	}
	return ""
}

// M3UURLsOrBuild returns a list of M3U URLs to probe: single IPTVCAT_M3U_URL
// if set, otherwise one URL per IPTVCAT_PROVIDER_URLS (or single
// ProviderBaseURL) with get.php.
func (c *Config) M3UURLsOrBuild() []string {
	if c.M3UURL != "" {
		return []string{c.M3UURL}
	}
	user, pass := c.ProviderUser, c.ProviderPass
	if user == "" || pass == "" {
		return nil
	}
	urls := c.ProviderURLs()
	if len(urls) == 0 {
		return nil
	}
	out := make([]string, 0, len(urls))
	for _, base := range urls {
		base = strings.TrimSuffix(base, "/")
		out = append(out, base+"/get.php?username="+url.QueryEscape(user)+"&password="+url.QueryEscape(pass)+"&type=m3u_plus&output=ts")
	}
	return out
}

// XMLTVURLOrBuild returns XMLTVURL if set, otherwise builds the panel's
// xmltv.php URL from ProviderBaseURL + user + pass.
func (c *Config) XMLTVURLOrBuild() string {
	if c.XMLTVURL != "" {
		return c.XMLTVURL
	}
	user, pass := c.ProviderUser, c.ProviderPass
	if user == "" || pass == "" {
		return ""
	}
	urls := c.ProviderURLs()
	if len(urls) == 0 {
		return ""
	}
	base := strings.TrimSuffix(urls[0], "/")
	return base + "/xmltv.php?username=" + url.QueryEscape(user) + "&password=" + url.QueryEscape(pass)
}

// ProviderURLs returns all base URLs to try (IPTVCAT_PROVIDER_URLS
// comma-separated, or single IPTVCAT_PROVIDER_URL). Requires explicit URL(s);
// no default host list.
func (c *Config) ProviderURLs() []string {
	s := os.Getenv("IPTVCAT_PROVIDER_URLS")
	if s != "" {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if c.ProviderBaseURL != "" {
		return []string{c.ProviderBaseURL}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, _ := strconv.Atoi(v)
		return n
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return defaultVal
		}
		return f
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
