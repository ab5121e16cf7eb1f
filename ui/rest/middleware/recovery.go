package middleware

import (
	"errors"
	"fmt"

	pkgError "github.com/AzielCF/az-laundry/pkg/error"
	"github.com/AzielCF/az-laundry/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err != nil {
				var res utils.ResponseData
				res.Status = 500
				res.Code = "INTERNAL_SERVER_ERROR"
				res.Message = fmt.Sprintf("%v", err)

				var generic pkgError.GenericError
				if asErr, ok := err.(error); ok && errors.As(asErr, &generic) {
					res.Status = generic.StatusCode()
					res.Code = generic.ErrCode()
					res.Message = generic.Error()
				}

				if res.Status >= 500 {
					logrus.Errorf("[REST] Panic recovered in middleware: %v", err)
				} else {
					logrus.Debugf("[REST] request failed: %v", err)
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}
