package security

import (
	"fmt"
	"mime"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	applog "spendwise/internal/log"
)

// Reason names one way a request does not fit the routes the server serves.
type Reason string

const (
	ReasonUnknownPath      Reason = "unknown_path"
	ReasonUnexpectedMethod Reason = "unexpected_method"
	ReasonUnexpectedBody   Reason = "unexpected_content_type"
	ReasonPathTraversal    Reason = "path_traversal"
	ReasonScanner          Reason = "scanner_user_agent"
	ReasonLongURL          Reason = "long_url"
	ReasonForwardedChain   Reason = "forwarded_chain"
)

const (
	maxURLLength     = 2048
	maxForwardedHops = 5
	formContentType  = "application/x-www-form-urlencoded"
	jsonContentType  = "application/json"
)

// Route is a path the server answers and the methods it accepts there. No
// Methods means GET. A Prefix route matches every path below it, like
// "/static/".
type Route struct {
	Path    string
	Methods []string
	Prefix  bool
}

// DetectionMetrics tracks security detection events
type DetectionMetrics struct {
	SuspiciousRequests int64
	InvalidIPAttempts  int64
	ByReason           map[Reason]int64
}

// Detector flags requests that do not match the server's route table. It
// never blocks; the server logs and counts what it finds.
type Detector struct {
	routes         []Route
	trustedProxies []*net.IPNet

	suspicious int64
	invalidIP  int64
	mu         sync.Mutex
	byReason   map[Reason]int64
}

// NewDetector creates a detector for the given route table.
func NewDetector(routes ...Route) *Detector {
	return &Detector{
		routes:   routes,
		byReason: make(map[Reason]int64),
		trustedProxies: []*net.IPNet{
			parseCIDR("127.0.0.0/8"),
			parseCIDR("10.0.0.0/8"),
			parseCIDR("172.16.0.0/12"),
			parseCIDR("192.168.0.0/16"),
		},
	}
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func (d *Detector) match(path string) (Route, bool) {
	for _, rt := range d.routes {
		if rt.Path == path || (rt.Prefix && strings.HasPrefix(path, rt.Path)) {
			return rt, true
		}
	}
	return Route{}, false
}

// Inspect returns every reason the request looks out of place, or nil.
func (d *Detector) Inspect(r *http.Request) []Reason {
	var reasons []Reason

	if hasTraversal(r) {
		reasons = append(reasons, ReasonPathTraversal)
	}

	rt, ok := d.match(r.URL.Path)
	switch {
	case !ok:
		reasons = append(reasons, ReasonUnknownPath)
	case !allows(rt, r.Method):
		reasons = append(reasons, ReasonUnexpectedMethod)
	case r.Method == http.MethodPost && !acceptedBody(r):
		reasons = append(reasons, ReasonUnexpectedBody)
	}

	if isScanner(r.Header.Get("User-Agent")) {
		reasons = append(reasons, ReasonScanner)
	}
	if len(r.URL.String()) > maxURLLength {
		reasons = append(reasons, ReasonLongURL)
	}
	if xff := r.Header.Get("X-Forwarded-For"); strings.Count(xff, ",") > maxForwardedHops {
		reasons = append(reasons, ReasonForwardedChain)
	}

	if len(reasons) > 0 {
		atomic.AddInt64(&d.suspicious, 1)
		d.mu.Lock()
		for _, reason := range reasons {
			d.byReason[reason]++
		}
		d.mu.Unlock()
	}
	return reasons
}

// DetectSuspiciousRequest reports whether Inspect finds anything.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	return len(d.Inspect(r)) > 0
}

func allows(rt Route, method string) bool {
	methods := rt.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}
	for _, m := range methods {
		if m == method {
			return true
		}
		if m == http.MethodGet && method == http.MethodHead {
			return true
		}
	}
	return false
}

// acceptedBody allows the two encodings the write endpoints parse, and an
// empty body.
func acceptedBody(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return r.ContentLength == 0
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == formContentType || mediaType == jsonContentType
}

func hasTraversal(r *http.Request) bool {
	for _, p := range []string{r.URL.Path, strings.ToLower(r.URL.RawPath)} {
		if strings.Contains(p, "%2e%2e") {
			return true
		}
		for _, seg := range strings.FieldsFunc(p, func(c rune) bool { return c == '/' || c == '\\' }) {
			if seg == ".." {
				return true
			}
		}
	}
	return false
}

var scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab"}

func isScanner(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, agent := range scannerAgents {
		if strings.Contains(ua, agent) {
			return true
		}
	}
	return false
}

// ExtractClientIP extracts the real client IP, validating forwarded headers
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil {
		atomic.AddInt64(&d.invalidIP, 1)
		return directIP
	}

	// Forwarded headers are only trusted from a proxy on a private network.
	if d.isTrustedProxy(parsedDirectIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(clientIP) != nil {
				return clientIP
			}
		}
		if xri := r.Header.Get("X-Real-IP"); net.ParseIP(xri) != nil {
			return xri
		}
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetMetrics returns current security metrics
func (d *Detector) GetMetrics() DetectionMetrics {
	d.mu.Lock()
	byReason := make(map[Reason]int64, len(d.byReason))
	for k, v := range d.byReason {
		byReason[k] = v
	}
	d.mu.Unlock()
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.suspicious),
		InvalidIPAttempts:  atomic.LoadInt64(&d.invalidIP),
		ByReason:           byReason,
	}
}

// Reasons returns the reasons of a metrics snapshot in name order.
func (m DetectionMetrics) Reasons() []Reason {
	out := make([]Reason, 0, len(m.ByReason))
	for r := range m.ByReason {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Middleware logs requests that do not fit the route table and lets them
// through. The mux answers unknown paths and wrong methods itself.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reasons := d.Inspect(r); len(reasons) > 0 {
			names := make([]string, len(reasons))
			for i, reason := range reasons {
				names[i] = string(reason)
			}
			fields := applog.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), "").
				WithClientIP(d.ExtractClientIP(r)).
				WithComponent(applog.ComponentSecurity)
			args := append(fields.ToSlice(), "reasons", strings.Join(names, ","))
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request", args...)
		}
		next.ServeHTTP(w, r)
	})
}
