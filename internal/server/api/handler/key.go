package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/internal/server/api"
	apierror "github.com/Alia5/matrixkb/internal/server/api/error"
	"github.com/Alia5/matrixkb/scancode"
)

// KeySwitch closes and opens matrix switches.
type KeySwitch interface {
	Press(c scancode.ScanCode) error
	Release(c scancode.ScanCode) error
}

// KeyDown returns a handler that presses the key named by the {code} param.
func KeyDown(m KeySwitch) api.HandlerFunc { return keyHandler(m, true) }

// KeyUp returns a handler that releases the key named by the {code} param.
func KeyUp(m KeySwitch) api.HandlerFunc { return keyHandler(m, false) }

func keyHandler(m KeySwitch, down bool) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		raw, ok := req.Params["code"]
		if !ok {
			return apierror.ErrBadRequest("missing code parameter")
		}
		code, err := scancode.Parse(raw)
		if err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid code: %v", err))
		}
		if down {
			err = m.Press(code)
		} else {
			err = m.Release(code)
		}
		if err != nil {
			return apierror.ErrInternal(err.Error())
		}
		logger.Debug("key", "code", code, "pressed", down)
		b, err := json.Marshal(apitypes.KeyResponse{Code: code.String(), Value: uint8(code), Pressed: down})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
