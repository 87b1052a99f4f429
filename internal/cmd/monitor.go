package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Alia5/matrixkb/apiclient"
	"github.com/Alia5/matrixkb/apitypes"
	"github.com/Alia5/matrixkb/command"
)

// Monitor acts as the host on the keyboard's link: it prints every key event
// and turns keystrokes into commands.
type Monitor struct {
	Addr     string   `help:"Management API address" default:"localhost:3243" env:"MATRIXKB_MONITOR_ADDR"`
	Password string   `help:"API password; empty reads the local key file" env:"MATRIXKB_API_PASSWORD"`
	Send     []string `help:"Send these commands (INIT, red_led_on, delay=20, 0x45, ...) and exit"`
}

const monitorHelp = "r/R g/G b/B: led off/on  i: init  [ ]: delay -/+  - =: rate -/+  q: quit"

// Run is called by Kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return m.Start(ctx, logger, os.Stdin, os.Stdout)
}

func (m *Monitor) Start(ctx context.Context, logger *slog.Logger, in *os.File, out io.Writer) error {
	cmds := make([]command.Command, 0, len(m.Send))
	for _, s := range m.Send {
		c, err := command.Parse(s)
		if err != nil {
			return err
		}
		cmds = append(cmds, c)
	}

	pwd := m.Password
	if pwd == "" {
		pwd = readKeyFile()
	}
	client := apiclient.NewWithPassword(m.Addr, pwd)
	ls, err := client.OpenLink(ctx)
	if err != nil {
		return err
	}
	defer ls.Close()

	if len(cmds) > 0 {
		return sendAll(ls, cmds, logger)
	}
	return m.interactive(ctx, client, ls, in, out)
}

// sendAll writes cmds and waits briefly for a rejection before closing.
func sendAll(ls *apiclient.LinkStream, cmds []command.Command, logger *slog.Logger) error {
	var sendErr error
	for _, c := range cmds {
		if sendErr = ls.SendCommand(c); sendErr != nil {
			break
		}
		logger.Info("sent", "command", c, "byte", fmt.Sprintf("0x%02x", c.Byte()))
	}
	_ = ls.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	for {
		_, err := ls.ReadEvent()
		if err == nil {
			continue
		}
		var apiErr *apitypes.ApiError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return sendErr
	}
}

// tuning tracks the typematic values the monitor believes are active so the
// bracket keys can step them.
type tuning struct {
	delay, rate uint8
	stale       bool
}

func (t *tuning) load(st *apitypes.StateResponse) {
	t.delay = command.ValueForTicks(st.DelayTicks)
	t.rate = command.ValueForTicks(st.RateTicks)
	t.stale = false
}

func step(v uint8, up bool) uint8 {
	switch {
	case up && v < command.MaxValue:
		return v + 1
	case !up && v > 0:
		return v - 1
	}
	return v
}

// keyCommand maps a keystroke to the command it sends.
func keyCommand(k byte, t *tuning) (command.Command, bool) {
	switch k {
	case 'r':
		return command.Regular(command.RedOff), true
	case 'R':
		return command.Regular(command.RedOn), true
	case 'g':
		return command.Regular(command.GreenOff), true
	case 'G':
		return command.Regular(command.GreenOn), true
	case 'b':
		return command.Regular(command.BlueOff), true
	case 'B':
		return command.Regular(command.BlueOn), true
	case 'i':
		t.stale = true
		return command.Regular(command.Init), true
	case '[', ']':
		t.delay = step(t.delay, k == ']')
		return command.Delay(t.delay), true
	case '-', '=':
		t.rate = step(t.rate, k == '=')
		return command.Rate(t.rate), true
	}
	return command.Command{}, false
}

func isTuningKey(k byte) bool { return k == '[' || k == ']' || k == '-' || k == '=' }

func (m *Monitor) interactive(ctx context.Context, client *apiclient.Client, ls *apiclient.LinkStream, in *os.File, out io.Writer) error {
	var t tuning
	if st, err := client.StateCtx(ctx); err == nil {
		t.load(st)
	} else {
		t.stale = true
	}

	nl := "\n"
	keys := make(chan byte)
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() { _ = term.Restore(fd, old) }()
		nl = "\r\n"
		go readKeys(in, keys)
	}
	fmt.Fprintf(out, "attached to %s%s%s%s", m.Addr, nl, monitorHelp, nl)

	evCh, errCh := ls.StartReading(ctx, 16)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-evCh:
			if !ok {
				evCh = nil
				continue
			}
			fmt.Fprintf(out, "%-12s 0x%02x%s", ev, ev.Byte(), nl)
		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case k := <-keys:
			if k == 'q' || k == 0x03 {
				return nil
			}
			if t.stale && isTuningKey(k) {
				if st, err := client.StateCtx(ctx); err == nil {
					t.load(st)
				}
			}
			c, ok := keyCommand(k, &t)
			if !ok {
				continue
			}
			if err := ls.SendCommand(c); err != nil {
				return err
			}
			fmt.Fprintf(out, "-> %s%s", c, nl)
		}
	}
}

func readKeys(r io.Reader, keys chan<- byte) {
	buf := make([]byte, 1)
	for {
		if _, err := r.Read(buf); err != nil {
			return
		}
		keys <- buf[0]
	}
}
