package internal

import (
	"errors"
	"net/http"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/xe"
	"github.com/go-orz/orz"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func WithErrorHandler(logger *zap.Logger) func(next echo.HandlerFunc) echo.HandlerFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					return c.JSON(he.Code, orz.Map{
						"code":    he.Code,
						"message": he.Message,
					})
				}

				var oe *orz.Error
				if errors.As(err, &oe) {
					var code = http.StatusBadRequest
					switch {
					case xe.IsUnavailable(err):
						code = http.StatusServiceUnavailable
						logger.Error("api", zap.String("path", c.Path()), zap.Error(err))
					case xe.IsNotFound(err):
						code = http.StatusNotFound
					}
					return c.JSON(code, orz.Map{
						"code":    oe.Code,
						"message": err.Error(),
					})
				}

				logger.Sugar().Error("api", zap.Error(err))

				return c.JSON(http.StatusInternalServerError, orz.Map{
					"code":    http.StatusInternalServerError,
					"message": err.Error(),
				})
			}
			return nil
		}
	}
}
