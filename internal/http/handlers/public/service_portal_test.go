package public

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elevate-affiliate/internal/service"
)

func (e *publicTestEnv) redirect(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusFound {
		t.Fatalf("http status want 302 got %d", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Fatalf("unexpected cache control: %q", got)
	}
	return w
}

func TestServicePortalRedirect(t *testing.T) {
	env := newPublicTestEnv(t, "public_service_portal")
	portals := env.container.PortalService

	name, serviceType, data := "Menu", "link", "https://menu.example.com"
	link, err := portals.CreateServiceLink(1, service.ServiceLinkInput{Name: &name, ServiceType: &serviceType, ServiceData: &data})
	if err != nil {
		t.Fatalf("create service link failed: %v", err)
	}
	view, err := portals.CreateServicePortal(service.CreateServicePortalInput{
		Name:           "Cafe",
		FrontendURL:    "https://portal.example.com",
		Items:          []service.PortalItemInput{{ServiceLinkID: link.ID}},
		RequestBaseURL: "http://api.example.com",
	})
	if err != nil {
		t.Fatalf("create service portal failed: %v", err)
	}

	w := env.redirect(t, fmt.Sprintf("/service-portal?qrId=%d", view.Portal.ID))
	if got := w.Header().Get("Location"); got != "https://portal.example.com/Cafe?service_Menu=https%3A%2F%2Fmenu.example.com" {
		t.Fatalf("unexpected location: %s", got)
	}
	refreshed, err := portals.GetServicePortal(view.Portal.ID)
	if err != nil {
		t.Fatalf("get service portal failed: %v", err)
	}
	if refreshed.Portal.Scans != 1 {
		t.Fatalf("scan should be counted, got %d", refreshed.Portal.Scans)
	}

	w = env.redirect(t, "/service-portal?qrId=nope")
	if got := w.Header().Get("Location"); got != "https://landing.example.com" {
		t.Fatalf("unknown portal should fall back to landing page, got %s", got)
	}
}
