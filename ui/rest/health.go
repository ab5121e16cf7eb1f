package rest

import (
	"github.com/AzielCF/az-laundry/domains/health"
	"github.com/AzielCF/az-laundry/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	rest := Health{Service: service}
	app.Get("/health", rest.GetStatus)

	return rest
}

func (handler *Health) GetStatus(c *fiber.Ctx) error {
	report := handler.Service.Check(c.UserContext())

	status := fiber.StatusOK
	if report.Status == health.StatusError {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    string(report.Status),
		Message: "Client health retrieved",
		Results: report,
	})
}
