package rest

import (
	"encoding/json"

	"github.com/AzielCF/az-laundry/infrastructure/session"
	"github.com/AzielCF/az-laundry/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Session struct {
	Store *session.Store
}

type sessionRequest struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

type sessionStatus struct {
	Authenticated bool               `json:"authenticated"`
	SavedAt       string             `json:"saved_at,omitempty"`
	Token         *session.TokenInfo `json:"token,omitempty"`
}

func InitRestSession(app fiber.Router, store *session.Store) Session {
	rest := Session{Store: store}
	app.Get("/session", rest.GetStatus)
	app.Put("/session", rest.Save)
	app.Delete("/session", rest.Clear)

	return rest
}

func (handler *Session) GetStatus(c *fiber.Ctx) error {
	rec, ok, err := handler.Store.Load(c.UserContext())
	utils.PanicIfNeeded(err)

	status := sessionStatus{Authenticated: ok}
	if ok {
		status.SavedAt = rec.SavedAt.Format("2006-01-02T15:04:05Z07:00")
		if info, err := handler.Store.Inspect(rec.Token); err == nil {
			status.Token = &info
		}
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session status retrieved",
		Results: status,
	})
}

func (handler *Session) Save(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "token is required",
		})
	}
	utils.PanicIfNeeded(handler.Store.Save(c.UserContext(), req.Token, req.User))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session saved",
	})
}

func (handler *Session) Clear(c *fiber.Ctx) error {
	utils.PanicIfNeeded(handler.Store.Clear(c.UserContext()))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session cleared",
	})
}
