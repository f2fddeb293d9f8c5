package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

// ValidError 单个字段校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// BindAndValid binds the request into obj and translates validation failures
// BindAndValid 绑定请求参数到 obj 并翻译校验错误
func BindAndValid(c *gin.Context, obj interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(obj)
	if err == nil {
		return true, nil
	}

	verrs, isValidErr := err.(val.ValidationErrors)
	if !isValidErr {
		errs = append(errs, &ValidError{
			Key:     "request",
			Message: err.Error(),
		})
		return false, errs
	}

	trans, hasTrans := c.Value("trans").(ut.Translator)
	if !hasTrans {
		for _, fieldErr := range verrs {
			errs = append(errs, &ValidError{
				Key:     fieldErr.Field(),
				Message: fieldErr.Error(),
			})
		}
		return false, errs
	}

	for key, value := range verrs.Translate(trans) {
		errs = append(errs, &ValidError{
			Key:     key,
			Message: value,
		})
	}
	return false, errs
}
