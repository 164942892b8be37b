package handlers

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
)

// GamesTable renders rows as an HTML table with the list's column headings.
func GamesTable(rows []games.Game) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>Games List</title></head><body>`)
		b.WriteString(`<table class="games"><thead><tr>`)
		for _, col := range games.Columns {
			b.WriteString("<th>")
			b.WriteString(templ.EscapeString(col))
			b.WriteString("</th>")
		}
		b.WriteString("</tr></thead><tbody>")
		if len(rows) == 0 {
			b.WriteString(`<tr><td colspan="`)
			b.WriteString(strconv.Itoa(len(games.Columns)))
			b.WriteString(`">No games yet</td></tr>`)
		}
		for _, g := range rows {
			b.WriteString("<tr>")
			for _, cell := range []string{
				strconv.Itoa(g.ID),
				g.Title,
				g.Platform,
				g.DatePurchased,
				g.DateLastPlayed,
				g.Comments,
			} {
				b.WriteString("<td>")
				b.WriteString(templ.EscapeString(cell))
				b.WriteString("</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table></body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
