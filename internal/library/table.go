package library

import (
	"fmt"
	"strings"

	"github.com/mj1618/keyword-server/internal/browser"
	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/locator"
)

var (
	pRow = docs.Param{Name: "row", Description: "0-based row number, the top-most row is 0"}
	pCol = docs.Param{Name: "col", Description: "0-based column number, the left-most column is 0"}
)

func (l *Library) tableKeywords() []keyword.Keyword {
	const owner = "table"
	return []keyword.Keyword{
		{
			Name: "get_table_cell", Owner: owner, Params: params(pLoc, pRow, pCol),
			Doc: "Return the text of one table cell.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				return cellText(b, c.Arg(0), c.Arg(1), c.Arg(2))
			}),
		},
		{
			Name: "table_cell_should_contain", Owner: owner, Params: params(pLoc, pRow, pCol, pText),
			Doc: "Verify that a table cell contains text.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				text, err := cellText(b, c.Arg(0), c.Arg(1), c.Arg(2))
				if err != nil {
					return nil, err
				}
				if !strings.Contains(text, c.Arg(3)) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The table cell at row %s and column %s, located in the table at %s, does not contain the text %s",
						c.Arg(1), c.Arg(2), c.Arg(0), c.Arg(3))
				}
				return nil, nil
			}),
		},
		{
			Name: "table_column_should_contain", Owner: owner, Params: params(pLoc, pCol, pText),
			Doc: "Verify that a table column contains text. Rows without the column are skipped.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				col, err := number("col", c.Arg(1))
				if err != nil {
					return nil, err
				}
				rows, err := tableRows(b, c.Arg(0))
				if err != nil {
					return nil, err
				}
				var content strings.Builder
				for _, row := range rows {
					cells, err := row.Children(browser.KindTableCell)
					if err != nil {
						return nil, err
					}
					if col < 0 || col >= len(cells) {
						continue
					}
					t, err := cells[col].Text()
					if err != nil {
						return nil, err
					}
					content.WriteString(" ")
					content.WriteString(t)
				}
				if !strings.Contains(content.String(), c.Arg(2)) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The table column number %s in the table located at %s does not contain the text %s",
						c.Arg(1), c.Arg(0), c.Arg(2))
				}
				return nil, nil
			}),
		},
		{
			Name: "table_header_should_contain", Owner: owner, Params: params(pLoc, pText),
			Doc: "Verify that the header of a table contains text.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				table := b.Element(browser.KindTable, locator.Parse(c.Arg(0)))
				text, err := table.Element(browser.KindTableHeader, locator.Spec{}).Text()
				if err != nil {
					return nil, err
				}
				if !strings.Contains(text, c.Arg(1)) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The table header of the table located at %s does not contain the text %s", c.Arg(0), c.Arg(1))
				}
				return nil, nil
			}),
		},
		{
			Name: "table_row_should_contain", Owner: owner, Params: params(pLoc, pRow, pText),
			Doc: "Verify that a table row contains text.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				row, err := tableRow(b, c.Arg(0), c.Arg(1))
				if err != nil {
					return nil, err
				}
				text, err := row.Text()
				if err != nil {
					return nil, err
				}
				if !strings.Contains(text, c.Arg(2)) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The table row number %s in the table located at %s does not contain the text %s", c.Arg(1), c.Arg(0), c.Arg(2))
				}
				return nil, nil
			}),
		},
		{
			Name: "table_should_contain", Owner: owner, Params: params(pLoc, pText),
			Doc: "Verify that text appears anywhere in a table.",
			Handler: l.withSession(func(c *keyword.Call, b browser.Browser) (any, error) {
				text, err := b.Element(browser.KindTable, locator.Parse(c.Arg(0))).Text()
				if err != nil {
					return nil, err
				}
				if !strings.Contains(text, c.Arg(1)) {
					return nil, failure.Verifyf(failure.CheckTextMatch, "The table located at %s does not contain the text %s", c.Arg(0), c.Arg(1))
				}
				return nil, nil
			}),
		},
	}
}

func tableRows(b browser.Browser, loc string) ([]browser.Element, error) {
	return b.Element(browser.KindTable, locator.Parse(loc)).Children(browser.KindTableRow)
}

func tableRow(b browser.Browser, loc, row string) (browser.Element, error) {
	r, err := number("row", row)
	if err != nil {
		return nil, err
	}
	rows, err := tableRows(b, loc)
	if err != nil {
		return nil, err
	}
	if r < 0 || r >= len(rows) {
		return nil, fmt.Errorf("table %s has no row %d; it has %d rows", loc, r, len(rows))
	}
	return rows[r], nil
}

func cellText(b browser.Browser, loc, row, col string) (string, error) {
	cIdx, err := number("col", col)
	if err != nil {
		return "", err
	}
	r, err := tableRow(b, loc, row)
	if err != nil {
		return "", err
	}
	cells, err := r.Children(browser.KindTableCell)
	if err != nil {
		return "", err
	}
	if cIdx < 0 || cIdx >= len(cells) {
		return "", fmt.Errorf("row %s of table %s has no column %d; it has %d columns", row, loc, cIdx, len(cells))
	}
	return cells[cIdx].Text()
}
