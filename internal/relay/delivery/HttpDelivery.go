package delivery

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/pycnick/apprelay/internal/relay"
	"github.com/sirupsen/logrus"
)

const (
	RelayPath   = "/send-get-to-app2"
	HistoryPath = "/relays"
)

type HttpDelivery struct {
	rUC relay.UseCase
	log *logrus.Logger
}

func NewHttpDelivery(e *echo.Echo, log *logrus.Logger, rUC relay.UseCase) *HttpDelivery {
	hD := &HttpDelivery{
		rUC: rUC,
		log: log,
	}

	e.GET(RelayPath, hD.Relay)
	e.GET(HistoryPath, hD.GetAllRelaysHistory)
	return hD
}

// Relay always answers 200: a failed outbound call is reported through the
// body, and the upstream status code is not forwarded.
func (hD *HttpDelivery) Relay(c echo.Context) error {
	body, err := hD.rUC.Relay(c.Request().Context())
	if err != nil {
		return c.String(http.StatusOK, errors.Cause(err).Error())
	}

	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, body)
}

func (hD *HttpDelivery) GetAllRelaysHistory(c echo.Context) error {
	records, err := hD.rUC.GetHistory(c.Request().Context())
	if err != nil {
		hD.log.WithError(err).Error("reading relay history")
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, records)
}
