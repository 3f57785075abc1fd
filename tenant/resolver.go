// Package tenant maps an incoming host header to the blog it addresses.
package tenant

import (
	"net/http"
	"strings"

	"github.com/burrowblog/burrow/config"
	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/models"
)

// Resolver resolves a raw host header to a blog, or to no blog at all when
// the host is one of the platform's own hostnames (the landing page case).
type Resolver struct {
	blogRepo  *database.BlogRepo
	apex      string
	bareHosts map[string]struct{}
	proxyHost string
}

func NewResolver(blogRepo *database.BlogRepo, c map[string]string) *Resolver {
	bare := make(map[string]struct{})
	for _, host := range config.GetStrings(c, "BARE_HOSTS",
		[]string{"127.0.0.1:8000", "localhost:8000"}) {
		bare[strings.ToLower(host)] = struct{}{}
	}

	apex := strings.ToLower(config.GetString(c, "PLATFORM_APEX", "burrow.blog"))
	bare[apex] = struct{}{}

	return &Resolver{
		blogRepo:  blogRepo,
		apex:      apex,
		bareHosts: bare,
		proxyHost: strings.ToLower(config.GetString(c, "PLATFORM_PROXY_HOST", "")),
	}
}

// ResolveRequest applies the reverse-proxy forwarded-host substitution, if
// configured for this deployment, before resolving the host. A nil blog with
// a nil error means the request addresses the platform itself.
func (r *Resolver) ResolveRequest(req *http.Request) (*models.Blog, error) {
	host := req.Host
	if r.proxyHost != "" && strings.EqualFold(host, r.proxyHost) {
		if forwarded := req.Header.Get("X-Forwarded-Host"); forwarded != "" {
			host = forwarded
		}
	}
	return r.Resolve(host)
}

// Resolve maps a host header to a blog. Policy, in order: bare platform
// hosts resolve to no tenant; <label>.<apex> resolves by subdomain; anything
// else is treated as a custom domain, retried with the leading www. toggled.
func (r *Resolver) Resolve(host string) (*models.Blog, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return nil, errs.NotFound()
	}

	if _, ok := r.bareHosts[host]; ok {
		return nil, nil
	}
	if stripPort(host) == r.apex {
		return nil, nil
	}

	if label, ok := r.subdomainLabel(host); ok {
		blog, err := r.blogRepo.FindBySubdomain(label)
		if err != nil {
			return nil, errs.NewDatabaseError("find blog by subdomain", "blog", err)
		}
		if blog == nil {
			return nil, errs.NotFound()
		}
		return blog, nil
	}

	return r.resolveCustomDomain(stripPort(host))
}

// subdomainLabel extracts <label> from <label>.<apex>[:<port>]. Labels
// beginning with www. never address a blog.
func (r *Resolver) subdomainLabel(host string) (string, bool) {
	host = stripPort(host)
	label, found := strings.CutSuffix(host, "."+r.apex)
	if !found || label == "" || strings.HasPrefix(label, "www.") {
		return "", false
	}
	return label, true
}

func (r *Resolver) resolveCustomDomain(domain string) (*models.Blog, error) {
	blog, err := r.blogRepo.FindByDomain(domain)
	if err != nil {
		return nil, errs.NewDatabaseError("find blog by domain", "blog", err)
	}
	if blog == nil {
		// Registering example.com makes www.example.com resolve too, and
		// the other way around.
		blog, err = r.blogRepo.FindByDomain(toggleWWW(domain))
		if err != nil {
			return nil, errs.NewDatabaseError("find blog by domain", "blog", err)
		}
	}
	if blog == nil {
		return nil, errs.NotFound()
	}
	return blog, nil
}

func toggleWWW(domain string) string {
	if stripped, found := strings.CutPrefix(domain, "www."); found {
		return stripped
	}
	return "www." + domain
}

func stripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i+1:], "]") {
		return host[:i]
	}
	return host
}
