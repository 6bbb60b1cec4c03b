package preview

import (
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"
)

// Show opens the terminal, displays img until a quit key is pressed and
// restores the terminal.
func Show(img image.Image, o Options) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("preview: init screen: %w", err)
	}
	defer s.Fini()
	Run(s, img, o)
	return nil
}

// Run draws img on the initialized screen s and redraws it on resize. It
// returns when Esc, q or Ctrl-C is pressed or the screen stops delivering
// events.
func Run(s tcell.Screen, img image.Image, o Options) {
	redraw := func() {
		w, h := s.Size()
		Draw(s, img, image.Rect(0, 0, w, h), o)
		s.Show()
	}
	redraw()

	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			s.Sync()
			redraw()
		case *tcell.EventKey:
			if quitKey(ev) {
				return
			}
		}
	}
}

func quitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
