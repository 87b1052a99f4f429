package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/internal/server/api"
	"github.com/Alia5/matrixkb/scancode"
)

// PressedLister reports closed switches in scan order.
type PressedLister interface {
	Pressed() []scancode.ScanCode
}

// MatrixList returns a handler listing the pressed keys.
func MatrixList(m PressedLister) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		out := apitypes.MatrixListResponse{Pressed: []string{}}
		for _, c := range m.Pressed() {
			out.Pressed = append(out.Pressed, c.String())
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
