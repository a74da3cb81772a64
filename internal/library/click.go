package library

import (
	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/keyword"
)

func (l *Library) clickKeywords() []keyword.Keyword {
	click := func(c *keyword.Call, el browser.Element) (any, error) {
		return nil, el.Click(c.Ctx)
	}
	return []keyword.Keyword{
		l.elementAction("button", "click_button", "Click a button (<button> or <input> of a button type).", browser.KindButton, click),
		l.elementAction("link", "click_link", "Click a link.", browser.KindLink, click),
		l.elementAction("image", "click_image", "Click an image.", browser.KindImage, click),
		l.elementAction("area", "click_area", "Click an image map area, which acts as a link.", browser.KindArea, click),
	}
}
