package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const econorusHTML = `<html><body>
<p><a href="/conf2026.phtml">XV Российский экономический конгресс</a> (Москва, 14-15 октября 2026 г.)</p>
<p><a href="/page.phtml">О нас</a></p>
<p><a href="https://external.org/ws">Workshop on Applied Econometrics</a>, 3 June 2026</p>
</body></html>`

func TestEconorusParse(t *testing.T) {
	p := NewEconorus(nil)
	items := p.parse(mustDoc(t, econorusHTML))
	require.Len(t, items, 2, "navigation links are filtered out")

	congress := items[0]
	assert.Equal(t, "econorus_conferences", congress.Parser)
	assert.Equal(t, econorusURL, congress.SourceURL)
	assert.Equal(t, "XV Российский экономический конгресс", congress.Title)
	assert.Equal(t, "14-15 октября 2026 г.", congress.DateRaw)
	assert.Contains(t, congress.Details, "Москва")
	assert.Equal(t, []string{"https://www.econorus.org/conf2026.phtml"}, congress.URLs)

	workshop := items[1]
	assert.Equal(t, "Workshop on Applied Econometrics", workshop.Title)
	assert.Equal(t, []string{"https://external.org/ws"}, workshop.URLs)
}
