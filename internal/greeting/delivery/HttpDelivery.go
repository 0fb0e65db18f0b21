package delivery

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HttpDelivery struct {
	greeting string
}

func NewHttpDelivery(e *echo.Echo, greeting string) *HttpDelivery {
	hD := &HttpDelivery{
		greeting: greeting,
	}

	e.GET("/", hD.Greet)
	return hD
}

func (hD *HttpDelivery) Greet(c echo.Context) error {
	return c.String(http.StatusOK, hD.greeting)
}
