package render

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/game"
	"github.com/airslash/airslash/internal/tracking"
)

// CommandSink accepts commands from the terminal. Send must not block the
// caller for long; the game queues them for its loop.
type CommandSink interface {
	Send(cmd game.Command) bool
}

// OpenScreen initializes the terminal with mouse and focus reporting.
func OpenScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	screen.HideCursor()
	return screen, nil
}

// Terminal polls screen events and translates them: keys into commands,
// resizes into play-area sizes, the mouse into tracking samples.
type Terminal struct {
	screen tcell.Screen
	mouse  *tracking.MouseSource
	log    *zap.Logger
}

// NewTerminal wires the screen to an optional mouse source.
func NewTerminal(screen tcell.Screen, mouse *tracking.MouseSource, log *zap.Logger) *Terminal {
	return &Terminal{screen: screen, mouse: mouse, log: log}
}

// Run polls events until ctx is done or the screen is finalized. The
// current size is sent first so the game starts with a sized play area.
func (t *Terminal) Run(ctx context.Context, sink CommandSink) error {
	sink.Send(t.resizeCommand())

	stop := context.AfterFunc(ctx, func() {
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return ctx.Err()
			}
		case *tcell.EventResize:
			t.screen.Sync()
			sink.Send(t.resizeCommand())
		case *tcell.EventKey:
			if cmd, ok := keyCommand(ev); ok {
				t.log.Debug("按鍵指令", zap.Stringer("cmd", cmd.Kind))
				sink.Send(cmd)
			}
		case *tcell.EventMouse:
			if t.mouse != nil {
				x, y := ev.Position()
				cols, rows := t.screen.Size()
				t.mouse.Feed(x, y, cols, rows-1, ev.Buttons()&tcell.Button1 != 0)
			}
		case *tcell.EventFocus:
			if !ev.Focused && t.mouse != nil {
				t.mouse.Leave()
			}
		}
	}
}

func (t *Terminal) resizeCommand() game.Command {
	w, h := PlayArea(t.screen.Size())
	return game.Command{Kind: game.CmdResize, Width: w, Height: h}
}

func keyCommand(ev *tcell.EventKey) (game.Command, bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		return game.Command{Kind: game.CmdStart}, true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.Command{Kind: game.CmdQuit}, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return game.Command{Kind: game.CmdStart}, true
		case 'm', 'M':
			return game.Command{Kind: game.CmdToggleInput}, true
		case 'q', 'Q':
			return game.Command{Kind: game.CmdQuit}, true
		}
	}
	return game.Command{}, false
}
