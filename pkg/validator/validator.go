// Package validator wraps go-playground/validator for gin binding
// Package validator 封装 go-playground/validator 供 gin 绑定使用
package validator

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	validatorV10 "github.com/go-playground/validator/v10"
)

// CustomValidator implements gin's binding.StructValidator
// CustomValidator 实现 gin 的 binding.StructValidator 接口
type CustomValidator struct {
	once     sync.Once
	Validate *validatorV10.Validate
}

// NewCustomValidator 创建 CustomValidator 实例
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if kindOfData(obj) == reflect.Struct {
		v.lazyinit()
		if err := v.Validate.Struct(obj); err != nil {
			return err
		}
	}
	return nil
}

func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.Validate = validatorV10.New()
		v.Validate.SetTagName("binding")
	})
}

func kindOfData(data interface{}) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()
	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}

// RegisterCustom registers project specific validation rules on the global
// gin binding validator.
// RegisterCustom 在全局 gin 绑定验证器上注册项目自定义校验规则。
func RegisterCustom() {
	validate, ok := binding.Validator.Engine().(*validatorV10.Validate)
	if !ok {
		return
	}

	// bbox: "minLng,minLat,maxLng,maxLat"
	_ = validate.RegisterValidation("bbox", func(fl validatorV10.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		parts := strings.Split(s, ",")
		if len(parts) != 4 {
			return false
		}
		vals := make([]float64, 4)
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return false
			}
			vals[i] = f
		}
		return vals[0] <= vals[2] && vals[1] <= vals[3]
	})
}
