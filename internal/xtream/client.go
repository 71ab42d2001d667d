// Package xtream is a minimal client for the Xtream Codes player API.
//
// The request path is deliberately raw: many panels speak just enough
// HTTP/1.1 to upset stricter clients (bogus header casing, unterminated
// chunked bodies), so the client dials the socket itself, reads everything
// the server sends, and tolerates truncated chunk framing by keeping
// whatever was accumulated.
package xtream

import (
	"bytes"
	"compress/gzip"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	connectTimeout   = 30 * time.Second
	readTimeout      = 30 * time.Second
	writeTimeout     = 10 * time.Second
	maxResponseBytes = 256 << 20
)

// Client talks to one panel. Zero value is not usable; construct with
// NewClient.
type Client struct {
	Server      string // scheme://host[:port], no trailing slash
	Username    string
	Password    string
	UserAgent   string
	InsecureTLS bool
}

func NewClient(server, username, password string) *Client {
	return &Client{
		Server:    strings.TrimSuffix(server, "/"),
		Username:  username,
		Password:  password,
		UserAgent: defaultUserAgent,
	}
}

// WithUserAgent overrides the browser-like default identity.
func (c *Client) WithUserAgent(ua string) *Client {
	c.UserAgent = ua
	return c
}

func (c *Client) apiURL(action string) string {
	return fmt.Sprintf("%s/player_api.php?username=%s&password=%s&action=%s",
		c.Server, url.QueryEscape(c.Username), url.QueryEscape(c.Password), action)
}

func (c *Client) apiURLWithParam(action, name, value string) string {
	return c.apiURL(action) + "&" + name + "=" + url.QueryEscape(value)
}

// AccountInfo fetches user and server status from the bare player_api.php
// endpoint.
func (c *Client) AccountInfo() (*Account, error) {
	body, err := c.makeRequest(fmt.Sprintf("%s/player_api.php?username=%s&password=%s",
		c.Server, url.QueryEscape(c.Username), url.QueryEscape(c.Password)))
	if err != nil {
		return nil, err
	}
	var acc Account
	if err := json.Unmarshal(body, &acc); err != nil {
		return nil, fmt.Errorf("account info: %w", err)
	}
	return &acc, nil
}

func (c *Client) LiveCategories() ([]Category, error) {
	return c.categories("get_live_categories")
}

func (c *Client) VODCategories() ([]Category, error) {
	return c.categories("get_vod_categories")
}

func (c *Client) SeriesCategories() ([]Category, error) {
	return c.categories("get_series_categories")
}

func (c *Client) categories(action string) ([]Category, error) {
	body, err := c.makeRequest(c.apiURL(action))
	if err != nil {
		return nil, err
	}
	var cats []Category
	if err := json.Unmarshal(body, &cats); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return cats, nil
}

func (c *Client) LiveStreams(categoryID string) ([]Stream, error) {
	return c.streams("get_live_streams", categoryID)
}

func (c *Client) VODStreams(categoryID string) ([]Stream, error) {
	return c.streams("get_vod_streams", categoryID)
}

func (c *Client) streams(action, categoryID string) ([]Stream, error) {
	body, err := c.makeRequest(c.apiURLWithParam(action, "category_id", categoryID))
	if err != nil {
		return nil, err
	}
	var streams []Stream
	if err := json.Unmarshal(body, &streams); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return streams, nil
}

func (c *Client) Series(categoryID string) ([]SeriesEntry, error) {
	body, err := c.makeRequest(c.apiURLWithParam("get_series", "category_id", categoryID))
	if err != nil {
		return nil, err
	}
	var series []SeriesEntry
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("get_series: %w", err)
	}
	return series, nil
}

// SeriesInfo returns the raw season/episode document; its shape varies too
// much between panel versions to type.
func (c *Client) SeriesInfo(seriesID int64) (json.RawMessage, error) {
	return c.rawAction("get_series_info", "series_id", strconv.FormatInt(seriesID, 10))
}

// VODInfo returns the raw movie metadata document.
func (c *Client) VODInfo(vodID int64) (json.RawMessage, error) {
	return c.rawAction("get_vod_info", "vod_id", strconv.FormatInt(vodID, 10))
}

// ShortEPG returns the raw now/next listing for one stream.
func (c *Client) ShortEPG(streamID int64) (json.RawMessage, error) {
	return c.rawAction("get_short_epg", "stream_id", strconv.FormatInt(streamID, 10))
}

func (c *Client) rawAction(action, name, value string) (json.RawMessage, error) {
	body, err := c.makeRequest(c.apiURLWithParam(action, name, value))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: invalid JSON response", action)
	}
	return json.RawMessage(body), nil
}

// XMLTV fetches the panel's full guide document.
func (c *Client) XMLTV() (string, error) {
	body, err := c.makeRequest(fmt.Sprintf("%s/xmltv.php?username=%s&password=%s",
		c.Server, url.QueryEscape(c.Username), url.QueryEscape(c.Password)))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// makeRequest issues a GET over a raw socket and returns the decoded body.
func (c *Client) makeRequest(rawurl string) ([]byte, error) {
	host, port, path, useTLS, err := parseHTTPURL(strings.TrimSpace(rawurl))
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if useTLS {
		tc := tls.Client(conn, &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: c.InsecureTLS,
		})
		if err := tc.SetDeadline(time.Now().Add(connectTimeout)); err != nil {
			return nil, err
		}
		if err := tc.Handshake(); err != nil {
			return nil, err
		}
		conn = tc
	}

	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	request := "GET " + path + " HTTP/1.1\r\n" +
		"Host: " + host + "\r\n" +
		"Connection: close\r\n" +
		"User-Agent: " + ua + "\r\n" +
		"Accept: application/json\r\n" +
		"\r\n"

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write([]byte(request)); err != nil {
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	response, err := io.ReadAll(io.LimitReader(conn, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	sep := bytes.Index(response, []byte("\r\n\r\n"))
	if sep < 0 {
		return nil, fmt.Errorf("invalid HTTP response from %s", host)
	}
	headers := string(bytes.ToLower(response[:sep]))
	body := response[sep+4:]

	if strings.Contains(headers, "transfer-encoding: chunked") {
		body = decodeChunked(body)
	}
	return decodeContentEncoding(headers, body)
}

// decodeChunked unwraps Transfer-Encoding: chunked framing. Truncated or
// malformed framing terminates decoding with whatever was accumulated; panel
// servers are known to drop the connection mid-chunk.
func decodeChunked(body []byte) []byte {
	var result []byte
	remaining := body
	for {
		sizeEnd := bytes.Index(remaining, []byte("\r\n"))
		if sizeEnd < 0 {
			break
		}
		sizeStr := strings.TrimSpace(string(remaining[:sizeEnd]))
		chunkSize, err := strconv.ParseUint(sizeStr, 16, 32)
		if err != nil {
			break
		}
		if chunkSize == 0 {
			break
		}
		dataStart := sizeEnd + 2
		dataEnd := dataStart + int(chunkSize)
		if dataEnd > len(remaining) {
			break
		}
		result = append(result, remaining[dataStart:dataEnd]...)
		remaining = remaining[dataEnd:]
		if bytes.HasPrefix(remaining, []byte("\r\n")) {
			remaining = remaining[2:]
		}
	}
	return result
}

// decodeContentEncoding unwraps gzip or brotli compressed bodies.
func decodeContentEncoding(headers string, body []byte) ([]byte, error) {
	switch {
	case strings.Contains(headers, "content-encoding: gzip"):
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer gr.Close()
		return io.ReadAll(gr)
	case strings.Contains(headers, "content-encoding: br"):
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	default:
		return body, nil
	}
}

// parseHTTPURL splits a URL into dial host, port and request path. https
// gets TLS and a 443 default port.
func parseHTTPURL(rawurl string) (host string, port int, path string, useTLS bool, err error) {
	switch {
	case strings.HasPrefix(rawurl, "http://"):
		rawurl = strings.TrimPrefix(rawurl, "http://")
		port = 80
	case strings.HasPrefix(rawurl, "https://"):
		rawurl = strings.TrimPrefix(rawurl, "https://")
		port = 443
		useTLS = true
	default:
		return "", 0, "", false, fmt.Errorf("invalid URL scheme")
	}

	hostPort := rawurl
	path = "/"
	if slash := strings.IndexByte(rawurl, '/'); slash >= 0 {
		hostPort = rawurl[:slash]
		path = rawurl[slash:]
	}

	host = hostPort
	if colon := strings.LastIndexByte(hostPort, ':'); colon >= 0 {
		p, perr := strconv.Atoi(hostPort[colon+1:])
		if perr != nil {
			return "", 0, "", false, fmt.Errorf("invalid port in %q", hostPort)
		}
		host = hostPort[:colon]
		port = p
	}
	return host, port, path, useTLS, nil
}
