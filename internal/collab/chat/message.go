package chat

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/coursely/payrelay/internal/checkout/domain"
)

// RenderMessage builds the confirmation alert posted to the ops channel.
// Customer-supplied fields are HTML-escaped so the renderer cannot interpret
// a name or email as markup. The trailing block is machine-parsable for
// copy-paste into the ads attribution tool.
func RenderMessage(p domain.ConfirmedPayment) string {
	var b strings.Builder

	b.WriteString("<b>New payment confirmed</b>\n\n")
	fmt.Fprintf(&b, "Full Name: %s\n", html.EscapeString(p.FullName))
	fmt.Fprintf(&b, "Email: %s\n", html.EscapeString(p.Email))
	fmt.Fprintf(&b, "Amount: %d %s\n", p.AmountMajor(), html.EscapeString(p.Currency))
	fmt.Fprintf(&b, "Reference: %s\n", html.EscapeString(p.Reference))
	fmt.Fprintf(&b, "Country: %s\n", html.EscapeString(p.Country))
	fmt.Fprintf(&b, "IP: %s\n", html.EscapeString(p.IP))

	b.WriteString("\n<pre>")
	fmt.Fprintf(&b, "GCLID: %s\n", html.EscapeString(p.GCLID))
	fmt.Fprintf(&b, "Conversion Time: %s\n", p.PaidAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Conversion Value: %d\n", p.AmountMajor())
	fmt.Fprintf(&b, "Currency: %s", html.EscapeString(p.Currency))
	b.WriteString("</pre>")

	return b.String()
}
