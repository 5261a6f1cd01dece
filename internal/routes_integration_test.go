package internal

import (
	"net/http/httptest"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
)

func TestPublicPresenceRouteRateLimited(t *testing.T) {
	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		RouteMountFunc: MountAppRoutes,
	})
	routes := srv.App.GetRoutes(true)

	var presenceRoute *fiber.Route
	for idx := range routes {
		route := routes[idx]
		if route.Method == fiber.MethodPost && route.Path == "/x/api/v1/presence" {
			presenceRoute = &routes[idx]
			break
		}
	}

	require.NotNil(t, presenceRoute, "expected presence route to be registered")

	// The rate limiter is wrapped in a conditional function that only applies
	// in production. In test environment it passes through but the wrapper
	// still exists on the chain.
	hasRateLimiter := false
	var handlerNames []string
	for _, handler := range presenceRoute.Handlers {
		name := runtime.FuncForPC(reflect.ValueOf(handler).Pointer()).Name()
		handlerNames = append(handlerNames, name)
		if strings.Contains(name, "middleware/limiter") || strings.Contains(name, "MountAppRoutes.func") {
			hasRateLimiter = true
			break
		}
	}

	require.Truef(t, hasRateLimiter, "expected rate limiter middleware for public presence route, handlers: %v", handlerNames)
}

func TestAllPublicRoutesRegistered(t *testing.T) {
	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		RouteMountFunc: MountAppRoutes,
	})
	routes := srv.App.GetRoutes(true)

	registered := make(map[string]bool)
	for _, route := range routes {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /_health",
		"HEAD /_health",
		"POST /x/api/v1/presence",
		"DELETE /x/api/v1/presence",
		"GET /x/api/v1/presence",
		"GET /x/api/v1/activity",
		"POST /x/api/v1/activity",
		"POST /x/api/v1/jobs/click",
		"GET /x/api/v1/jobs/clicks",
		"POST /x/api/v1/links/click",
		"GET /x/api/v1/links/clicks",
		"POST /x/api/v1/blog/view",
		"GET /x/api/v1/blog/views",
		"GET /x/api/v1/identity",
		"GET /cron/daily-analytics",
		"GET /cron/diagnostics",
	}

	for _, want := range expected {
		require.Truef(t, registered[want], "expected route %s to be registered", want)
	}
}

func TestCronRoutesProtected(t *testing.T) {
	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		RouteMountFunc: MountAppRoutes,
	})

	// Unauthenticated requests must be rejected before the handler runs.
	for _, path := range []string{"/cron/daily-analytics", "/cron/diagnostics"} {
		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		resp, err := srv.App.Test(req, 30000)
		require.NoError(t, err)
		require.Equalf(t, fiber.StatusUnauthorized, resp.StatusCode, "expected %s to require auth", path)

		req = httptest.NewRequest(fiber.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer wrong-secret")
		resp, err = srv.App.Test(req, 30000)
		require.NoError(t, err)
		require.Equalf(t, fiber.StatusUnauthorized, resp.StatusCode, "expected %s to reject a bad secret", path)
	}
}
