package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/indicator"
	"github.com/Alia5/matrixkb/internal/server/api"
)

type IndicatorState interface {
	State() indicator.State
}

// LEDs returns a handler reporting the indicator outputs.
func LEDs(p IndicatorState) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		s := p.State()
		b, err := json.Marshal(apitypes.LEDsResponse{Red: s.Red, Green: s.Green, Blue: s.Blue, CapsLock: s.CapsLock})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
