// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

// Presenter shows a modal error message and returns once it is dismissed
type Presenter interface {
	Present(caption, text string)
}

var presenters = map[string]func() Presenter{
	"silent": func() Presenter { return Silent{} },
	"native": func() Presenter { return NativeDialog{} },
	"sdl":    func() Presenter { return SDLMessageBox{} },
}

// NewPresenter returns the presenter registered under name. An empty name
// selects platformDefault.
func NewPresenter(name string, platformDefault Presenter) (Presenter, error) {
	if name == "" {
		return platformDefault, nil
	}
	newPresenter, ok := presenters[name]
	if !ok {
		return nil, fmt.Errorf("app: unknown presenter %q", name)
	}
	return newPresenter(), nil
}

// Silent shows nothing
type Silent struct{}

// Present implements Presenter
func (Silent) Present(caption, text string) {}

// NativeDialog shows the message in the desktop's native dialog
type NativeDialog struct{}

// Present implements Presenter
func (NativeDialog) Present(caption, text string) {
	dialog.Message("%s", text).Title(caption).Error()
}

// SDLMessageBox shows the message in an SDL message box
type SDLMessageBox struct {
	// Window is the parent window, may be nil
	Window *sdl.Window
}

// Present implements Presenter
func (m SDLMessageBox) Present(caption, text string) {
	if err := sdl.ShowSimpleMessageBox(sdl.MESSAGEBOX_ERROR, caption, text, m.Window); err != nil {
		log.WithError(err).Warn("Message box failed")
	}
}
