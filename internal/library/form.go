package library

import (
	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/locator"
)

var formKinds = []presenceKind{
	{"button", "button", browser.KindButton},
	{"checkbox", "checkbox", browser.KindCheckbox},
	{"element", "element", browser.KindElement},
	{"filefield", "file-field", browser.KindFileField},
	{"radio_button", "radio button", browser.KindRadio},
	{"select_list", "select list", browser.KindSelect},
	{"textfield", "textfield", browser.KindTextField},
}

func (l *Library) formKeywords() []keyword.Keyword {
	ks := make([]keyword.Keyword, 0, 2*len(formKinds))
	for _, fk := range formKinds {
		ks = append(ks, l.formPresence(fk, true), l.formPresence(fk, false))
	}
	return ks
}

// formPresence builds form_should_contain_<kind> or its negation. The field
// is looked up inside the form only.
func (l *Library) formPresence(fk presenceKind, want bool) keyword.Keyword {
	name := "form_should_contain_" + fk.suffix
	doc := "Verify that a form contains the " + fk.label + "."
	if !want {
		name = "form_should_not_contain_" + fk.suffix
		doc = "Verify that a form does not contain the " + fk.label + "."
	}
	return keyword.Keyword{
		Name: name, Owner: "form", Doc: doc, Params: params(pFormLoc, pFieldLoc),
		Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
			form := b.Element(browser.KindForm, locator.Parse(c.Arg(0)))
			exists := form.Element(fk.kind, locator.Parse(c.Arg(1))).Exists()
			switch {
			case want && !exists:
				return nil, failure.Verifyf(failure.CheckExistence, "The %s described by %s was not located in the form described by %s.", fk.label, c.Arg(1), c.Arg(0))
			case !want && exists:
				return nil, failure.Verifyf(failure.CheckAbsence, "The %s described by %s was erroneously located in the form described by %s.", fk.label, c.Arg(1), c.Arg(0))
			}
			return nil, nil
		}),
	}
}
