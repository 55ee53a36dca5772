package handlers

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bizdesk/internal/shared/utils"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom request tags on gin's binding
// validator. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		utils.UseJSONFieldNames(v)
		registerErr = utils.RegisterAccessValidations(v)
	})
	return registerErr
}
