//go:build !libretro && !ios

package cli

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

const (
	notificationDuration = 1500 * time.Millisecond
	notificationFade     = 300 * time.Millisecond
	notificationPadding  = 8
	notificationMargin   = 8
)

// Notification shows one short message in the top-left corner and fades it
// out before it expires.
type Notification struct {
	message string
	shown   time.Time
	face    text.Face
	bg      *ebiten.Image
	now     func() time.Time
}

// NewNotification creates an empty notification.
func NewNotification() *Notification {
	return &Notification{
		face: text.NewGoXFace(basicfont.Face7x13),
		now:  time.Now,
	}
}

// Show replaces the current message.
func (n *Notification) Show(message string) {
	n.message = message
	n.shown = n.now()
}

// alpha returns the message opacity, zero once it has expired.
func (n *Notification) alpha() float32 {
	if n.message == "" {
		return 0
	}
	left := notificationDuration - n.now().Sub(n.shown)
	switch {
	case left <= 0:
		return 0
	case left < notificationFade:
		return float32(left) / float32(notificationFade)
	}
	return 1
}

// Draw renders the message over screen.
func (n *Notification) Draw(screen *ebiten.Image) {
	a := n.alpha()
	if a == 0 {
		return
	}

	tw, th := text.Measure(n.message, n.face, 0)
	w := int(tw) + notificationPadding*2
	h := int(th) + notificationPadding*2
	if n.bg == nil || n.bg.Bounds().Dx() != w || n.bg.Bounds().Dy() != h {
		if n.bg != nil {
			n.bg.Deallocate()
		}
		n.bg = ebiten.NewImage(w, h)
		n.bg.Fill(color.RGBA{0, 0, 0, 153})
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(notificationMargin, notificationMargin)
	opts.ColorScale.ScaleAlpha(a)
	screen.DrawImage(n.bg, opts)

	textOpts := &text.DrawOptions{}
	textOpts.GeoM.Translate(notificationMargin+notificationPadding, notificationMargin+notificationPadding)
	textOpts.ColorScale.ScaleWithColor(color.White)
	textOpts.ColorScale.ScaleAlpha(a)
	text.Draw(screen, n.message, n.face, textOpts)
}
