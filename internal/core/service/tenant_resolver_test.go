package service

import (
	"net/url"
	"testing"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

func resolve(t *testing.T, rawPath, rawQuery, host string) domain.TenantContext {
	t.Helper()
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	return NewTenantResolver("example.com").Resolve(rawPath, q, host)
}

func TestTenantResolver_PathSlug(t *testing.T) {
	tc := resolve(t, "/acme/marketplace/services", "", "example.com")
	if tc.Source != domain.SourcePathSlug || tc.Slug != "acme" {
		t.Fatalf("expected path-slug acme, got %+v", tc)
	}
}

func TestTenantResolver_PrecedenceOrder(t *testing.T) {
	// Every source present at once, with conflicting values; each case
	// removes the winning signal and expects the next one to win.
	cases := []struct {
		name       string
		path       string
		query      string
		host       string
		wantSource domain.TenantSource
		wantSlug   string
		wantID     string
	}{
		{
			name:       "path slug beats everything",
			path:       "/acme/marketplace/services",
			query:      "client=other&invite=XYZ123",
			host:       "globex.example.com",
			wantSource: domain.SourcePathSlug,
			wantSlug:   "acme",
		},
		{
			name:       "client param beats invite and subdomain",
			path:       "/marketplace/services",
			query:      "client=tenant-7&invite=XYZ123",
			host:       "globex.example.com",
			wantSource: domain.SourceClientParam,
			wantID:     "tenant-7",
		},
		{
			name:       "invite beats subdomain",
			path:       "/marketplace/register",
			query:      "invite=XYZ123",
			host:       "globex.example.com",
			wantSource: domain.SourceInviteCode,
		},
		{
			name:       "subdomain when nothing else",
			path:       "/marketplace/services",
			query:      "",
			host:       "globex.example.com",
			wantSource: domain.SourceSubdomain,
			wantSlug:   "globex",
		},
		{
			name:       "unresolved when no signal",
			path:       "/marketplace/services",
			query:      "",
			host:       "example.com",
			wantSource: domain.SourceUnresolved,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tc := resolve(t, tt.path, tt.query, tt.host)
			if tc.Source != tt.wantSource {
				t.Fatalf("expected source %s, got %s", tt.wantSource, tc.Source)
			}
			if tc.Slug != tt.wantSlug {
				t.Fatalf("expected slug %q, got %q", tt.wantSlug, tc.Slug)
			}
			if tc.ID != tt.wantID {
				t.Fatalf("expected id %q, got %q", tt.wantID, tc.ID)
			}
		})
	}
}

func TestTenantResolver_ReservedSegmentsAreNotSlugs(t *testing.T) {
	for _, path := range []string{
		"/vendor-portal/orders",
		"/marketplace/login",
		"/admin/dashboard",
		"/client/dashboard",
	} {
		tc := resolve(t, path, "", "example.com")
		if tc.Source != domain.SourceUnresolved {
			t.Fatalf("%s: expected unresolved, got %+v", path, tc)
		}
	}
}

func TestTenantResolver_SlugRequiresMarketplaceSegment(t *testing.T) {
	tc := resolve(t, "/acme/orders", "", "example.com")
	if tc.Source != domain.SourceUnresolved {
		t.Fatalf("expected unresolved for non-marketplace path, got %+v", tc)
	}
}

func TestTenantResolver_InviteCodeAlias(t *testing.T) {
	tc := resolve(t, "/marketplace/register", "code=ABC999", "example.com")
	if tc.Source != domain.SourceInviteCode {
		t.Fatalf("expected invite-code via alias, got %+v", tc)
	}
}

func TestTenantResolver_Subdomain(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"acme.example.com", "acme"},
		{"acme.example.com:8080", "acme"},
		{"www.example.com", ""},
		{"example.com", ""},
		{"deep.acme.example.com", ""},
		{"acme.elsewhere.com", ""},
	}
	for _, tt := range cases {
		tc := resolve(t, "/", "", tt.host)
		if tt.want == "" {
			if tc.Source == domain.SourceSubdomain {
				t.Fatalf("%s: unexpected subdomain %+v", tt.host, tc)
			}
			continue
		}
		if tc.Source != domain.SourceSubdomain || tc.Slug != tt.want {
			t.Fatalf("%s: expected subdomain %q, got %+v", tt.host, tt.want, tc)
		}
	}
}

func TestTenantResolver_SubdomainDisabledWithoutBaseDomain(t *testing.T) {
	tc := NewTenantResolver("").Resolve("/", url.Values{}, "acme.example.com")
	if tc.Source != domain.SourceUnresolved {
		t.Fatalf("expected unresolved, got %+v", tc)
	}
}

func TestParseInviteContext_Verbatim(t *testing.T) {
	q, _ := url.ParseQuery("ref=R1&vendor=V9&client=C3&invite=XYZ123&type=vendor_referral")
	ic := domain.ParseInviteContext(q)
	if ic.Ref != "R1" || ic.VendorID != "V9" || ic.ClientID != "C3" || ic.Invite != "XYZ123" || ic.Type != "vendor_referral" {
		t.Fatalf("invite context not carried verbatim: %+v", ic)
	}
	if ic.Empty() {
		t.Fatalf("expected non-empty invite context")
	}
}
