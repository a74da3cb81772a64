package library

import (
	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/locator"
)

var (
	pListLoc = docs.Param{Name: "list_loc", Description: "attribute/value pairs that match a select list"}
	pItemLoc = docs.Param{Name: "item_loc", Description: "attribute/value pairs that match an item in the select list"}
)

func (l *Library) selectKeywords() []keyword.Keyword {
	const owner = "select"
	kind := browser.KindSelect
	return []keyword.Keyword{
		{
			Name:  "select_item_from_list",
			Owner: owner,
			Params: params(pListLoc, docs.Param{Name: "item_loc",
				Description: "text=<visible text or label> or value=<value attribute> of the item to select"}),
			Doc: "Select one item of a select list by text or by value.",
			Handler: func(c *keyword.Call) (any, error) {
				by, item, err := locator.ParseOption(c.Arg(1))
				if err != nil {
					return nil, err
				}
				list, err := l.element(kind, c.Arg(0))
				if err != nil {
					return nil, err
				}
				if by == locator.OptionByValue {
					return nil, delegate(list.SelectValue(item))
				}
				return nil, delegate(list.SelectText(item))
			},
		},
		l.elementAction(owner, "select_all_items_from_list", "Select every item of a multiple select list.", kind,
			func(c *keyword.Call, list browser.Element) (any, error) {
				options, err := list.Children(browser.KindOption)
				if err != nil {
					return nil, err
				}
				for _, o := range options {
					v, err := o.Value()
					if err != nil {
						return nil, err
					}
					if err := list.SelectValue(v); err != nil {
						return nil, err
					}
				}
				return nil, nil
			}),
		l.elementAction(owner, "clear_items_from_list", "Deselect every item of a multiple select list.", kind,
			func(c *keyword.Call, list browser.Element) (any, error) {
				return nil, list.ClearSelection()
			}),
		l.itemSelection(true),
		l.itemSelection(false),
	}
}

func (l *Library) itemSelection(want bool) keyword.Keyword {
	name, doc := "item_should_be_selected", "Verify that an item of a select list is selected."
	if !want {
		name, doc = "item_should_not_be_selected", "Verify that an item of a select list is not selected."
	}
	return keyword.Keyword{
		Name: name, Owner: "select", Doc: doc, Params: params(pListLoc, pItemLoc),
		Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
			list := b.Element(browser.KindSelect, locator.Parse(c.Arg(0)))
			selected, err := list.Element(browser.KindOption, locator.Parse(c.Arg(1))).Selected()
			if err != nil {
				return nil, err
			}
			switch {
			case want && !selected:
				return nil, failure.Verifyf(failure.CheckSelection, "The item described by %s in the select list described by %s is not selected", c.Arg(1), c.Arg(0))
			case !want && selected:
				return nil, failure.Verifyf(failure.CheckSelection, "The item described by %s in the select list described by %s is selected", c.Arg(1), c.Arg(0))
			}
			return nil, nil
		}),
	}
}
