package shared

import (
	"sync"

	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterValidators 向 gin 的校验器注册业务规则（幂等）。
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.Warnw("validator_engine_unexpected")
			return
		}
		if err := engine.RegisterValidation("phone", validatePhone); err != nil {
			logger.Errorw("validator_register_phone_failed", "error", err)
		}
	})
}

func validatePhone(fl validator.FieldLevel) bool {
	return service.ValidPhone(fl.Field().String())
}
