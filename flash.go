package hxwidget

import (
	"context"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Flash levels for toast notifications.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// DefaultToastDismissMillis is the delay after which the client removes a
// toast unless the target sets another.
const DefaultToastDismissMillis = 3000

// Flash is a one-time notification shown after a callback.
type Flash struct {
	Level   string // success, error, warning, info
	Message string
}

// RenderFlashesOOB renders flashes as an out-of-band append to #toasts.
// A dismissMillis of zero or less selects DefaultToastDismissMillis.
func RenderFlashesOOB(flashes []Flash, dismissMillis int) string {
	if len(flashes) == 0 {
		return ""
	}
	if dismissMillis <= 0 {
		dismissMillis = DefaultToastDismissMillis
	}

	var sb strings.Builder
	sb.WriteString(`<div id="toasts" hx-swap-oob="beforeend">`)
	for _, f := range flashes {
		sb.WriteString(`<div class="toast toast-`)
		sb.WriteString(html.EscapeString(f.Level))
		sb.WriteString(`" data-auto-dismiss="`)
		sb.WriteString(strconv.Itoa(dismissMillis))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(f.Message))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// ToastContainer renders the #toasts element flashes are appended to.
// Place it once in the page layout.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="toasts" class="toast-container"></div>`)
		return err
	})
}
