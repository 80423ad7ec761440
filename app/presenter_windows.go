// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"github.com/devblok/hellosurface/window"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

func init() {
	presenters["win32"] = func() Presenter { return MessageBox{} }
}

// MessageBox shows the message with MessageBoxW and an error icon
type MessageBox struct {
	Owner window.Handle
}

// Present implements Presenter
func (m MessageBox) Present(caption, text string) {
	t, err := windows.UTF16PtrFromString(text)
	if err != nil {
		log.WithError(err).Warn("Message box failed")
		return
	}
	c, err := windows.UTF16PtrFromString(caption)
	if err != nil {
		log.WithError(err).Warn("Message box failed")
		return
	}
	if _, err := windows.MessageBox(windows.HWND(m.Owner), t, c, windows.MB_OK|windows.MB_ICONERROR); err != nil {
		log.WithError(err).Warn("Message box failed")
	}
}
