package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"

	"github.com/oceanatlas/sstviz/internal/domain"
)

// Frame is one step of an animation.
type Frame struct {
	Slice *domain.Slice
	Title string
}

// AnimationConfig controls animation rendering. The embedded MapConfig
// applies to every frame; all frames share one color scale so values
// are comparable across the sequence.
type AnimationConfig struct {
	MapConfig

	// Milliseconds between frames during playback. Defaults to 500.
	DelayMillis int
}

type animFrame struct {
	Title string
	URI   template.URL
}

type animPage struct {
	Title  string
	Width  int
	Height int
	Delay  int
	Frames []animFrame
}

// Animation renders the frames with a shared color scale and writes a
// single self-contained HTML document with an embedded player. Frames
// are kept in the given order.
func Animation(w io.Writer, frames []Frame, cfg AnimationConfig) error {
	if len(frames) == 0 {
		return fmt.Errorf("animation needs at least one frame")
	}
	if err := cfg.Bounds.Validate(); err != nil {
		return err
	}
	slices := make([]*domain.Slice, len(frames))
	for i, f := range frames {
		slices[i] = f.Slice
	}
	cmap := NewColorMap(slices...)

	page := animPage{
		Title: cfg.Label,
		Delay: cfg.DelayMillis,
	}
	if page.Delay <= 0 {
		page.Delay = 500
	}
	page.Width, page.Height = cfg.PixelSize()

	var buf bytes.Buffer
	for _, f := range frames {
		buf.Reset()
		if err := MapWith(&buf, f.Slice, cfg.MapConfig, cmap); err != nil {
			return fmt.Errorf("failed to render frame %q: %w", f.Title, err)
		}
		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		page.Frames = append(page.Frames, animFrame{
			Title: f.Title,
			URI:   template.URL(uri),
		})
	}

	return animTemplate.Execute(w, page)
}

var animTemplate = template.Must(template.New("animation").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1em; }
#frame { width: {{.Width}}px; height: {{.Height}}px; }
#title { margin: 0.5em 0; }
</style>
</head>
<body>
<img id="frame" src="{{(index .Frames 0).URI}}" alt="">
<p id="title">{{(index .Frames 0).Title}}</p>
<p>
<button id="prev">&laquo;</button>
<button id="play">pause</button>
<button id="next">&raquo;</button>
<input id="pos" type="range" min="0" max="{{len .Frames}}" value="0">
</p>
<script>
var frames = [
{{- range .Frames}}
	{title: {{.Title}}, uri: {{.URI}}},
{{- end}}
];
var cur = 0, playing = true;
var img = document.getElementById("frame");
var title = document.getElementById("title");
var pos = document.getElementById("pos");
pos.max = frames.length - 1;
function show(i) {
	cur = (i + frames.length) % frames.length;
	img.src = frames[cur].uri;
	title.textContent = frames[cur].title;
	pos.value = cur;
}
var timer = setInterval(function() { show(cur + 1); }, {{.Delay}});
document.getElementById("play").onclick = function() {
	playing = !playing;
	this.textContent = playing ? "pause" : "play";
	if (playing) {
		timer = setInterval(function() { show(cur + 1); }, {{.Delay}});
	} else {
		clearInterval(timer);
	}
};
document.getElementById("prev").onclick = function() { show(cur - 1); };
document.getElementById("next").onclick = function() { show(cur + 1); };
pos.oninput = function() { show(parseInt(this.value, 10)); };
show(0);
</script>
</body>
</html>
`))
