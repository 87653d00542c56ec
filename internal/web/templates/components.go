// Package templates holds the server-rendered HTML fragments.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/a-h/templ"
)

// DashboardCards renders one card per company. selected is the company the
// sales rep is currently acting as (0 for none).
func DashboardCards(cards []core.CompanyCard, selected int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="dashboard-cards">`); err != nil {
			return err
		}
		if len(cards) == 0 {
			if _, err := io.WriteString(w, `<p class="empty">No companies found</p>`); err != nil {
				return err
			}
		}
		for _, c := range cards {
			if err := DashboardCard(c, selected).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// DashboardCard shows name, admin and email, a "Selected" badge for the
// acting company, and the button that starts or ends masquerade.
func DashboardCard(c core.CompanyCard, selected int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		isSelected := c.CompanyID == selected

		var badge, button string
		if isSelected {
			badge = `<span class="badge">Selected</span>`
			button = `<button type="button" hx-delete="/api/masquerade" class="btn btn-outlined">End MASQUERADE</button>`
		} else {
			button = fmt.Sprintf(`<button type="button" hx-post="/api/masquerade/%d" class="btn">MASQUERADE</button>`, c.CompanyID)
		}

		_, err := fmt.Fprintf(w,
			`<div class="card" data-company-id="%d"><div class="card-header"><h5>%s</h5>%s</div>`+
				`<div class="card-body"><p>Admin: %s</p><p>Email: %s</p></div>`+
				`<div class="card-actions">%s</div></div>`,
			c.CompanyID,
			templ.EscapeString(c.CompanyName),
			badge,
			templ.EscapeString(c.CompanyAdminName),
			templ.EscapeString(c.CompanyEmail),
			button,
		)
		return err
	})
}

// ErrorAlert renders an error fragment for HTMX swaps.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p>%s</p><p class="action">%s</p><small>Code: %s</small></div>`,
			templ.EscapeString(message),
			templ.EscapeString(action),
			templ.EscapeString(code),
		)
		return err
	})
}
