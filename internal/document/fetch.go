package document

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrHostNotAllowed = errors.New("document host is not allowed")
	ErrPrivateAddress = errors.New("document host resolves to a non-public address")
)

type HTTPFetcherConfig struct {
	Timeout time.Duration
	// AllowedHosts lists hostnames remote documents may come from. A leading
	// "*." matches any subdomain. Empty means no remote host is allowed.
	AllowedHosts []string
	// MaxBytes caps the response body; zero means no cap.
	MaxBytes int
	// AllowPrivate lets the dialer reach loopback and private networks.
	AllowPrivate bool
}

// HTTPFetcher downloads documents from allow-listed http(s) hosts. Every
// connection, redirects included, is checked again at dial time so a public
// name cannot resolve to an internal address.
type HTTPFetcher struct {
	client *resty.Client
	hosts  []string
	logger *zap.Logger
}

func NewHTTPFetcher(cfg HTTPFetcherConfig, logger *zap.Logger) *HTTPFetcher {
	f := &HTTPFetcher{logger: logger}
	for _, h := range cfg.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			f.hosts = append(f.hosts, h)
		}
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !cfg.AllowPrivate {
		dialer.Control = rejectPrivate
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}

	f.client = resty.New().
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetResponseBodyLimit(cfg.MaxBytes).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5), resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
			if !f.allowed(req.URL.Hostname()) {
				return fmt.Errorf("redirect to %s: %w", req.URL.Hostname(), ErrHostNotAllowed)
			}
			return nil
		})).
		SetHeader("Accept", "application/pdf, image/*;q=0.8, */*;q=0.5")
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("fetch %s: not an http(s) url", source)
	}
	if !f.allowed(u.Hostname()) {
		return nil, fmt.Errorf("fetch %s: %w", u.Hostname(), ErrHostNotAllowed)
	}
	resp, err := f.client.R().SetContext(ctx).Get(source)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", source, resp.StatusCode())
	}
	f.logger.Debug("document fetched", zap.String("url", source), zap.Int("bytes", len(resp.Body())))
	return resp.Body(), nil
}

func (f *HTTPFetcher) allowed(host string) bool {
	host = strings.ToLower(host)
	for _, h := range f.hosts {
		if h == host {
			return true
		}
		if suffix, ok := strings.CutPrefix(h, "*."); ok && strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

func rejectPrivate(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !publicIP(ip) {
		return fmt.Errorf("dial %s: %w", address, ErrPrivateAddress)
	}
	return nil
}

// carrier-grade NAT, not covered by IsPrivate
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() ||
		sharedAddressSpace.Contains(ip))
}

// FileFetcher reads documents from a directory on disk. Sources are resolved
// relative to Root and may not escape it.
type FileFetcher struct {
	Root string
}

func (f FileFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(source, "file://")
	if f.Root != "" {
		clean := filepath.Clean("/" + path)
		path = filepath.Join(f.Root, clean)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// SourceFetcher dispatches on the source scheme: http(s) URLs go to HTTP,
// everything else to Files.
type SourceFetcher struct {
	HTTP  Fetcher
	Files Fetcher
}

func (s SourceFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if s.HTTP == nil {
			return nil, fmt.Errorf("no http fetcher configured for %s", source)
		}
		return s.HTTP.Fetch(ctx, source)
	}
	if s.Files == nil {
		return nil, fmt.Errorf("no file fetcher configured for %s", source)
	}
	return s.Files.Fetch(ctx, source)
}
