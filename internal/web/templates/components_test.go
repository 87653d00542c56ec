package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardCards(t *testing.T) {
	cards := []core.CompanyCard{
		{CompanyID: 1, CompanyName: "Acme", CompanyAdminName: "Ann", CompanyEmail: "ann@acme.test"},
		{CompanyID: 2, CompanyName: "Bolt & Co", CompanyAdminName: "Bob", CompanyEmail: "bob@bolt.test"},
	}

	var buf bytes.Buffer
	require.NoError(t, DashboardCards(cards, 2).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<h5>Acme</h5>")
	assert.Contains(t, html, "Bolt &amp; Co")
	assert.Contains(t, html, "Admin: Ann")
	assert.Contains(t, html, "Email: bob@bolt.test")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Selected")))
	assert.Contains(t, html, `hx-post="/api/masquerade/1"`)
	assert.Contains(t, html, "End MASQUERADE")
}

func TestDashboardCards_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DashboardCards(nil, 0).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No companies found")
}

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("<b>bad</b>", "retry", "ERR000").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "&lt;b&gt;bad&lt;/b&gt;")
	assert.Contains(t, buf.String(), "Code: ERR000")
}
