package rest

import (
	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	"github.com/AzielCF/az-laundry/infrastructure/connectivity"
	"github.com/AzielCF/az-laundry/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Connectivity struct {
	Signal domainAPI.IConnectivity
}

type connectivityRequest struct {
	Online *bool `json:"online"`
}

func InitRestConnectivity(app fiber.Router, signal domainAPI.IConnectivity) Connectivity {
	rest := Connectivity{Signal: signal}
	app.Get("/connectivity", rest.GetStatus)
	app.Put("/connectivity", rest.SetStatus)

	return rest
}

func (handler *Connectivity) GetStatus(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Connectivity status retrieved",
		Results: fiber.Map{"online": handler.Signal.IsOnline()},
	})
}

// SetStatus only works with the static signal; a probe decides for itself.
func (handler *Connectivity) SetStatus(c *fiber.Ctx) error {
	static, ok := handler.Signal.(*connectivity.Static)
	if !ok {
		return c.Status(409).JSON(utils.ResponseData{
			Status:  409,
			Code:    "CONFLICT",
			Message: "connectivity is probed automatically in this mode",
		})
	}

	var req connectivityRequest
	if err := c.BodyParser(&req); err != nil || req.Online == nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "online is required",
		})
	}
	static.SetOnline(*req.Online)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Connectivity status updated",
		Results: fiber.Map{"online": static.IsOnline()},
	})
}
