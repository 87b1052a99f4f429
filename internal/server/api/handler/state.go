package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/controller"
	"github.com/Alia5/matrixkb/internal/server/api"
)

type StatusSource interface {
	Status() controller.Status
}

type AttachState interface {
	Attached() bool
}

// State returns a handler reporting typematic timing, caps-lock and queue
// occupancy. link may be nil when the link is a tty.
func State(c StatusSource, link AttachState) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		st := c.Status()
		out := apitypes.StateResponse{
			DelayTicks: st.Typematic.DelayTicks,
			RateTicks:  st.Typematic.RateTicks,
			CapsLock:   st.CapsLock,
			Queued:     st.Queued,
			QueueSize:  st.QueueSize,
		}
		if link != nil {
			out.HostAttached = link.Attached()
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
