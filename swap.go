package hxwidget

// SwapMode is the htmx swap strategy used when a callback response
// re-renders a page region out of band.
//
// See https://htmx.org/attributes/hx-swap-oob/.
type SwapMode string

const (
	// SwapOuter replaces the region element itself. This is the default.
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces only the region's contents.
	SwapInner SwapMode = "innerHTML"

	// SwapBeforeEnd appends to the region's contents.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapAfterEnd inserts after the region as its next sibling.
	SwapAfterEnd SwapMode = "afterend"

	// SwapBeforeBegin inserts before the region as its previous sibling.
	SwapBeforeBegin SwapMode = "beforebegin"

	// SwapAfterBegin prepends to the region's contents.
	SwapAfterBegin SwapMode = "afterbegin"

	// SwapDelete removes the region. The component is ignored.
	SwapDelete SwapMode = "delete"
)
