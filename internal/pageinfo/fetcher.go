package pageinfo

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/version"
)

const (
	DefaultFetchTimeout = 5 * time.Second
	DefaultMaxBodyBytes = 2 << 20
	maxRedirects        = 5
)

// ErrBlockedAddress is returned when a fetch would connect to a loopback,
// private, link-local or otherwise non-public address.
var ErrBlockedAddress = errors.New("address is not publicly routable")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598), which
// netip does not count as private.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Fetcher downloads a page and analyzes it. It implements HintProvider.
type Fetcher struct {
	client  *http.Client
	maxBody int64
}

// NewFetcher creates a fetcher with a short-lived client (no keep-alive,
// TLS 1.2 minimum). Zero values select the defaults. Unless allowPrivate is
// set, every connection, redirects included, is checked after DNS
// resolution and refused when the peer is not a public address.
func NewFetcher(timeout time.Duration, maxBody int64, allowPrivate bool) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				d := &net.Dialer{
					Timeout:   timeout,
					KeepAlive: 0,
				}
				if !allowPrivate {
					d.Control = refuseNonPublic
				}
				return d.DialContext(ctx, network, addr)
			},
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &Fetcher{client: client, maxBody: maxBody}
}

// Suggest fetches rawURL and returns the page with its hints. The page URL
// is the final URL after redirects.
func (f *Fetcher) Suggest(ctx context.Context, rawURL string) (Suggestion, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !IsWebPage(rawURL) {
		return Suggestion{}, &domain.ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("User-Agent", "bookmarker/"+version.Version)

	resp, err := f.client.Do(req)
	if errors.Is(err, ErrBlockedAddress) {
		return Suggestion{}, &domain.ValidationError{Field: "url", Reason: "must point to a public address", Err: err}
	}
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Suggestion{}, fmt.Errorf("failed to fetch page: status %d", resp.StatusCode)
	}

	pageURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL.String()
	}

	s, err := AnalyzeHTML(io.LimitReader(resp.Body, f.maxBody), pageURL)
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to parse page: %w", err)
	}
	return s, nil
}

// refuseNonPublic is a net.Dialer Control hook. address is the resolved
// ip:port about to be dialed.
func refuseNonPublic(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%s %s: %w", network, address, ErrBlockedAddress)
	}
	if !IsPublicAddr(ap.Addr()) {
		return fmt.Errorf("%s %s: %w", network, address, ErrBlockedAddress)
	}
	return nil
}

// IsPublicAddr reports whether addr is a globally routable unicast address.
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return addr.IsGlobalUnicast()
}
