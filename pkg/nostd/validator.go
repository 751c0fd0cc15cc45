package nostd

import (
	"net/http"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

// CustomValidator echo 请求参数校验，错误信息翻译为可读文本
type CustomValidator struct {
	Validator *validator.Validate
	trans     ut.Translator
}

// TransInit 注册英文翻译
func (cv *CustomValidator) TransInit() error {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(cv.Validator, trans); err != nil {
		return err
	}
	cv.trans = trans
	return nil
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.Validator.Struct(i)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || cv.trans == nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		messages = append(messages, fe.Translate(cv.trans))
	}
	return echo.NewHTTPError(http.StatusBadRequest, strings.Join(messages, "; "))
}
