package receipts

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// ContentType is the MIME type of rendered receipts.
const ContentType = "text/html; charset=utf-8"

// LineItem is one ordered product as it appears on the receipt.
type LineItem struct {
	Name      string
	Reference string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Data carries everything the receipt template needs.
type Data struct {
	OrderDisplayID string
	StoreName      string
	StoreLogoURL   string
	StorePhone     string
	Customer       types.CustomerInfo
	Items          []LineItem
	Total          decimal.Decimal
	ShowPrices     bool
	IssuedAt       time.Time
}

// ObjectName returns the storage object path for a rendered receipt.
func ObjectName(prefix, orderDisplayID string) string {
	prefix = strings.Trim(prefix, "/")
	name := fmt.Sprintf("%s.html", strings.ToLower(strings.ReplaceAll(orderDisplayID, " ", "-")))
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Render produces the branded confirmation document for a finalized order.
func Render(data Data) ([]byte, error) {
	if data.OrderDisplayID == "" {
		return nil, fmt.Errorf("order display id is required")
	}
	if data.IssuedAt.IsZero() {
		data.IssuedAt = time.Now()
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering receipt: %w", err)
	}
	return buf.Bytes(), nil
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(value decimal.Decimal) string {
		return "R$ " + value.StringFixed(2)
	},
}).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Pedido {{.OrderDisplayID}}</title>
</head>
<body>
<header>
{{- if .StoreLogoURL}}
<img src="{{.StoreLogoURL}}" alt="{{.StoreName}}" height="48">
{{- end}}
<h1>{{.StoreName}}</h1>
<p>Pedido <strong>{{.OrderDisplayID}}</strong> — {{.IssuedAt.Format "02/01/2006 15:04"}}</p>
</header>
<section>
<h2>Cliente</h2>
<p>{{.Customer.Name}}<br>{{.Customer.Phone}}{{if .Customer.Email}}<br>{{.Customer.Email}}{{end}}</p>
</section>
<section>
<h2>Itens</h2>
<table>
<thead><tr><th>Ref.</th><th>Produto</th><th>Qtd.</th>{{if .ShowPrices}}<th>Unit.</th><th>Total</th>{{end}}</tr></thead>
<tbody>
{{- range .Items}}
<tr><td>{{.Reference}}</td><td>{{.Name}}</td><td>{{.Quantity}}</td>{{if $.ShowPrices}}<td>{{money .UnitPrice}}</td><td>{{money .LineTotal}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- if .ShowPrices}}
<p><strong>Total: {{money .Total}}</strong></p>
{{- end}}
</section>
{{- if .StorePhone}}
<footer><p>Contato: {{.StorePhone}}</p></footer>
{{- end}}
</body>
</html>
`))
