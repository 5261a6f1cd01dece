package v1

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"pulseboard/internal/visitors"
)

// GetIdentityHandler provisions a fresh visitor identity. The client stores
// the returned id and includes it on every heartbeat; the server never links
// it to anything personal.
func GetIdentityHandler(ctx *cartridge.Context) error {
	visitorID := visitors.ProvisionID()

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"visitorId": visitorID,
		"alias":     visitors.Alias(visitorID),
		"country":   resolveCountry(ctx.Ctx),
	})
}
