package export

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/inamate/sketchpad/internal/raster"
)

func redDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}
	src, err := raster.EncodeDataURL(img)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func snapshotJSON(src string) string {
	return `{"layers":[{"id":"layer_1","x":10,"y":10,"w":20,"h":20,"src":"` + src + `"}],` +
		`"draws":[{"id":"draw_1","type":"rect","a":{"x":0,"y":0},"b":{"x":5,"y":5},` +
		`"strokeColor":"#000000","fillColor":"#ffffff","fillMode":"stroke","thickness":2,"dashed":false}],` +
		`"scale":2,"offset":{"x":100,"y":100}}`
}

func post(t *testing.T, h *Handler, target, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Flatten(rec, req)
	return rec
}

func TestFlattenPNG(t *testing.T) {
	h := NewHandler(raster.NewResolver(""), 64, 48)
	body, _ := json.Marshal(map[string]any{
		"snapshot": json.RawMessage(snapshotJSON(redDataURL(t))),
		"caption":  "broken hinge, left side",
	})

	rec := post(t, h, "/export", "application/json", bytes.NewBuffer(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("X-Caption"); got != "broken%20hinge%2C%20left%20side" {
		t.Errorf("X-Caption = %q", got)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("size = %v, want 64x48 canvas default", b)
	}
	// The viewport is ignored, so the layer lands at its world position.
	r, g, _, _ := img.At(20, 20).RGBA()
	if r>>8 < 0xf0 || g>>8 > 0x10 {
		t.Errorf("pixel inside layer = %v, want red", img.At(20, 20))
	}
}

func TestFlattenJSONAndMultipart(t *testing.T) {
	h := NewHandler(raster.NewResolver(""), 64, 48)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("snapshot", snapshotJSON(redDataURL(t)))
	mw.WriteField("caption", "note")
	mw.WriteField("width", "32")
	mw.WriteField("height", "16")
	mw.Close()

	rec := post(t, h, "/export?format=json", mw.FormDataContentType(), &buf)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Caption != "note" || !strings.HasPrefix(resp.ID, "exp_") {
		t.Errorf("got caption %q id %q", resp.Caption, resp.ID)
	}
	img, err := raster.DecodeDataURL(resp.Image)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("size = %v, want 32x16", b)
	}
	if len(resp.Snapshot) == 0 {
		t.Error("snapshot not echoed")
	}
}

func TestFlattenErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", "{", http.StatusBadRequest},
		{"no snapshot", `{"caption":"x"}`, http.StatusBadRequest},
		{"invalid snapshot", `{"snapshot":{"layers":[],"draws":[]}}`, http.StatusBadRequest},
		{"too large", `{"snapshot":` + snapshotJSON("data:,") + `,"width":100000,"height":10}`, http.StatusBadRequest},
		{"unresolvable layer", `{"snapshot":` + snapshotJSON("/assets/missing.png") + `}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(raster.NewResolver(""), 64, 48)
			rec := post(t, h, "/export", "application/json", bytes.NewBufferString(tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestEncodeCaption(t *testing.T) {
	tests := []struct {
		caption string
		want    string
	}{
		{"plain", "plain"},
		{"Café", "Caf%C3%A9"},
		{"a\r\nb", "a%0D%0Ab"},
		{"日本", "%E6%97%A5%E6%9C%AC"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := encodeCaption(tt.caption)
			if got != tt.want {
				t.Errorf("encodeCaption(%q) = %q, want %q", tt.caption, got, tt.want)
			}
			back, err := url.PathUnescape(got)
			if err != nil || back != tt.caption {
				t.Errorf("round trip = %q, %v", back, err)
			}
		})
	}
}
