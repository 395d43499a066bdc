package ui

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// PlotPage renders the live scatter page. The page subscribes to
// streamPath with an EventSource and draws each frame on a canvas:
// reference front in grey, current front in red.
func PlotPage(title, streamPath string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<title>"+templ.EscapeString(title)+"</title>\n"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, pageStyle); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<h1 id=\"title\">"+templ.EscapeString(title)+"</h1>\n"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, pageCanvas); err != nil {
			return err
		}
		_, err := io.WriteString(w, "<script>const streamPath = \""+templ.EscapeString(streamPath)+"\";\n"+pageScript+"</script>\n</body>\n</html>\n")
		return err
	})
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
`

const pageStyle = `<style>
body { font-family: sans-serif; margin: 2rem; }
canvas { border: 1px solid #ccc; }
#status { color: #666; }
</style>
</head>
<body>
`

const pageCanvas = `<canvas id="plot" width="640" height="480"></canvas>
<p id="status">waiting for frames</p>
`

const pageScript = `
const canvas = document.getElementById("plot");
const ctx = canvas.getContext("2d");
let frames = [];

function extent(rows) {
  let minX = Infinity, maxX = -Infinity, minY = Infinity, maxY = -Infinity;
  for (const r of rows) {
    const y = r.length > 1 ? r[1] : 0;
    minX = Math.min(minX, r[0]); maxX = Math.max(maxX, r[0]);
    minY = Math.min(minY, y); maxY = Math.max(maxY, y);
  }
  if (minX === maxX) { minX -= 1; maxX += 1; }
  if (minY === maxY) { minY -= 1; maxY += 1; }
  return {minX, maxX, minY, maxY};
}

function draw() {
  ctx.clearRect(0, 0, canvas.width, canvas.height);
  const all = [];
  for (const f of frames) { all.push(...(f.points || []), ...(f.reference || [])); }
  if (all.length === 0) { return; }
  const e = extent(all);
  const px = x => 20 + (x - e.minX) / (e.maxX - e.minX) * (canvas.width - 40);
  const py = y => canvas.height - 20 - (y - e.minY) / (e.maxY - e.minY) * (canvas.height - 40);
  const dot = (r, color) => {
    ctx.fillStyle = color;
    ctx.fillRect(px(r[0]) - 2, py(r.length > 1 ? r[1] : 0) - 2, 4, 4);
  };
  const last = frames[frames.length - 1];
  for (const r of last.reference || []) { dot(r, "#bbb"); }
  for (const f of frames) { for (const r of f.points || []) { dot(r, "#d33"); } }
}

const source = new EventSource(streamPath);
source.onmessage = (msg) => {
  const frame = JSON.parse(msg.data);
  if (frame.replace) { frames = [frame]; } else { frames.push(frame); }
  document.getElementById("status").textContent = frame.title;
  draw();
};
source.addEventListener("end", () => {
  source.close();
  const last = frames[frames.length - 1];
  document.getElementById("status").textContent = (last ? last.title + ", " : "") + "run finished";
});
source.onerror = () => { document.getElementById("status").textContent = "stream closed"; };
`
