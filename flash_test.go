package hxwidget

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRenderFlashesOOBEmpty(t *testing.T) {
	if got := RenderFlashesOOB(nil, 0); got != "" {
		t.Errorf("RenderFlashesOOB(nil) = %q, want empty string", got)
	}
	if got := RenderFlashesOOB([]Flash{}, 0); got != "" {
		t.Errorf("RenderFlashesOOB([]) = %q, want empty string", got)
	}
}

func TestRenderFlashesOOB(t *testing.T) {
	result := RenderFlashesOOB([]Flash{
		{Level: FlashSuccess, Message: "Event moved"},
		{Level: FlashWarning, Message: "Overlaps another event"},
	}, 0)

	for _, want := range []string{
		`<div id="toasts" hx-swap-oob="beforeend">`,
		`class="toast toast-success"`,
		`class="toast toast-warning"`,
		`data-auto-dismiss="3000"`,
		"Event moved",
		"Overlaps another event",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q in %s", want, result)
		}
	}
}

func TestRenderFlashesOOBEscapesHTML(t *testing.T) {
	result := RenderFlashesOOB([]Flash{
		{Level: `x" onclick="alert(1)`, Message: "<script>alert('xss')</script>"},
	}, 0)

	if strings.Contains(result, "<script>") {
		t.Error("message was not escaped")
	}
	if strings.Contains(result, `onclick="alert`) {
		t.Error("level was not escaped")
	}
	if !strings.Contains(result, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}
}

func TestRenderFlashesOOBDismissDelay(t *testing.T) {
	result := RenderFlashesOOB([]Flash{{Level: FlashInfo, Message: "Saved"}}, 800)
	if !strings.Contains(result, `data-auto-dismiss="800"`) {
		t.Errorf("missing dismiss delay in %s", result)
	}
}

func TestTargetDismissAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	err := NewTarget().Flash(FlashInfo, "Saved").DismissAfter(5000).Write(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if body := rec.Body.String(); !strings.Contains(body, `data-auto-dismiss="5000"`) {
		t.Errorf("body = %s", body)
	}

	rec = httptest.NewRecorder()
	if err := NewTarget().Flash(FlashInfo, "Saved").Write(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if body := rec.Body.String(); !strings.Contains(body, `data-auto-dismiss="3000"`) {
		t.Errorf("default delay missing from %s", body)
	}
}

func TestToastContainer(t *testing.T) {
	var buf bytes.Buffer
	if err := ToastContainer().Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := buf.String(); got != `<div id="toasts" class="toast-container"></div>` {
		t.Errorf("ToastContainer() = %q", got)
	}
}
