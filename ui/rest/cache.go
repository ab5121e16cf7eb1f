package rest

import (
	"encoding/json"
	"time"

	domainCache "github.com/AzielCF/az-laundry/domains/cache"
	pkgError "github.com/AzielCF/az-laundry/pkg/error"
	"github.com/AzielCF/az-laundry/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Cache struct {
	Store domainCache.ICacheStore
}

type cacheSetRequest struct {
	Value json.RawMessage `json:"value"`
	TTLMs int64           `json:"ttl_ms"`
}

type cacheEntryResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
	AgeMs int64           `json:"age_ms"`
}

func InitRestCache(app fiber.Router, store domainCache.ICacheStore) Cache {
	rest := Cache{Store: store}
	app.Get("/cache/stats", rest.GetStats)
	app.Post("/cache/clear", rest.Clear)
	app.Get("/cache/:key", rest.GetEntry)
	app.Put("/cache/:key", rest.SetEntry)
	app.Delete("/cache/:key", rest.RemoveEntry)

	return rest
}

func (handler *Cache) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Store.Stats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

func (handler *Cache) Clear(c *fiber.Ctx) error {
	handler.Store.Clear(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache cleared successfully",
	})
}

func (handler *Cache) GetEntry(c *fiber.Ctx) error {
	key := c.Params("key")
	value, ok := handler.Store.Get(c.UserContext(), key)
	if !ok {
		utils.PanicIfNeeded(pkgError.NotFoundError("cache entry " + key + " not found"))
	}
	age, _ := handler.Store.Age(c.UserContext(), key)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache entry retrieved",
		Results: cacheEntryResponse{Key: key, Value: value, AgeMs: age.Milliseconds()},
	})
}

func (handler *Cache) SetEntry(c *fiber.Ctx) error {
	var req cacheSetRequest
	if err := c.BodyParser(&req); err != nil || len(req.Value) == 0 || req.TTLMs <= 0 {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "value and a positive ttl_ms are required",
		})
	}

	handler.Store.Set(c.UserContext(), c.Params("key"), req.Value, time.Duration(req.TTLMs)*time.Millisecond)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache entry stored",
	})
}

func (handler *Cache) RemoveEntry(c *fiber.Ctx) error {
	handler.Store.Remove(c.UserContext(), c.Params("key"))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache entry removed",
	})
}
