package rest

import (
	"errors"

	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	"github.com/AzielCF/az-laundry/pkg/utils"
	"github.com/AzielCF/az-laundry/usecase"
	"github.com/gofiber/fiber/v2"
)

type Queue struct {
	Queue    domainQueue.IOfflineQueue
	Replayer *usecase.ReplayService
}

func InitRestQueue(app fiber.Router, queue domainQueue.IOfflineQueue, replayer *usecase.ReplayService) Queue {
	rest := Queue{Queue: queue, Replayer: replayer}
	app.Get("/queue", rest.List)
	app.Get("/queue/failed", rest.ListFailed)
	app.Post("/queue/replay", rest.Replay)
	app.Delete("/queue", rest.Clear)
	app.Delete("/queue/:id", rest.Remove)

	return rest
}

func (handler *Queue) List(c *fiber.Ctx) error {
	list, err := handler.Queue.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Offline queue retrieved",
		Results: fiber.Map{"pending": len(list), "items": list},
	})
}

func (handler *Queue) ListFailed(c *fiber.Ctx) error {
	list, err := handler.Queue.Failed(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Dead-lettered mutations retrieved",
		Results: list,
	})
}

func (handler *Queue) Replay(c *fiber.Ctx) error {
	report, err := handler.Replayer.Drain(c.UserContext())
	if errors.Is(err, usecase.ErrReplayInProgress) {
		return c.Status(409).JSON(utils.ResponseData{
			Status:  409,
			Code:    "CONFLICT",
			Message: err.Error(),
		})
	}
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Offline queue replayed",
		Results: report,
	})
}

func (handler *Queue) Clear(c *fiber.Ctx) error {
	utils.PanicIfNeeded(handler.Queue.Clear(c.UserContext()))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Offline queue cleared",
	})
}

func (handler *Queue) Remove(c *fiber.Ctx) error {
	utils.PanicIfNeeded(handler.Queue.Remove(c.UserContext(), c.Params("id")))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Queued mutation removed",
	})
}
