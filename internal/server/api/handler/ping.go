package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/internal/server/api"
)

// Ping reports the server identity and version.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: "matrixkb", Version: version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
