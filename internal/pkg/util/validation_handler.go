package util

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateDTO 校验结构体 tag，失败时返回 validator.ValidationErrors
func ValidateDTO(dto any) error {
	return validate.Struct(dto)
}
