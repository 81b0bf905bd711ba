package web

import (
	"html/template"

	"github.com/petal-labs/appforge/appforge"
)

type pageData struct {
	Examples     []appforge.Example
	Instructions string
	Ready        bool
	Warning      string
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>appforge</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { margin-bottom: .25rem; }
.tabs button { padding: .5rem 1rem; border: 1px solid #ccc; background: #f6f6f6; cursor: pointer; }
.tabs button.active { background: #fff; border-bottom-color: #fff; font-weight: 600; }
.panel { border: 1px solid #ccc; padding: 1rem; margin-top: -1px; }
.panel[hidden] { display: none; }
textarea { width: 100%; min-height: 8rem; }
#preview { max-width: 100%; margin-top: .5rem; border: 1px solid #eee; }
.warning { background: #fff4e5; border: 1px solid #f0b849; padding: .5rem 1rem; margin: 1rem 0; }
.error { background: #fdecea; border: 1px solid #e57373; padding: .5rem 1rem; margin: 1rem 0; }
#stream { white-space: pre-wrap; font-family: ui-monospace, monospace; background: #fafafa; padding: 1rem; }
#stream:empty, #messages:empty { display: none; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
.actions { margin: 1rem 0; }
</style>
</head>
<body>
<h1>appforge</h1>
<p>Turn a mock-up or a description into a Streamlit app.</p>

<div id="messages">{{if not .Ready}}<div class="warning">{{.Warning}}</div>{{end}}</div>

<div class="tabs">
  <button type="button" class="active" data-mode="show">Show</button>
  <button type="button" data-mode="tell">Tell</button>
</div>

<div class="panel" id="panel-show">
  <label>Upload a mock-up <input type="file" id="upload" accept="image/png,image/jpeg"></label>
  <p>or pick an example:
    <select id="example">
      <option value="">(none)</option>
      {{range .Examples}}<option value="{{.ID}}">{{.Title}}</option>
      {{end}}
    </select>
  </p>
  <img id="preview" alt="" hidden>
  <details>
    <summary>Instructions sent with the image</summary>
    <pre>{{.Instructions}}</pre>
  </details>
</div>

<div class="panel" id="panel-tell" hidden>
  <label for="text">Describe your app</label>
  <textarea id="text" placeholder="A dashboard that shows ..."></textarea>
</div>

<div class="actions">
  <button type="button" id="build"{{if not .Ready}} disabled{{end}}>Build</button>
  <button type="button" id="cancel" hidden>Cancel</button>
  <button type="button" id="clear">Clear</button>
</div>

<div id="stream"></div>
<div id="result"></div>

<script>
(function () {
  var mode = "show", upload = null, running = false;
  var $ = function (id) { return document.getElementById(id); };
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");

  function note(kind, text) {
    var seen = Array.prototype.some.call($("messages").children, function (c) { return c.textContent === text; });
    if (seen) { return; }
    var d = document.createElement("div");
    d.className = kind;
    d.textContent = text;
    $("messages").appendChild(d);
  }
  function setRunning(v) {
    running = v;
    $("cancel").hidden = !v;
    $("build").disabled = v || {{if .Ready}}false{{else}}true{{end}};
  }

  document.querySelectorAll(".tabs button").forEach(function (b) {
    b.addEventListener("click", function () {
      mode = b.dataset.mode;
      document.querySelectorAll(".tabs button").forEach(function (o) { o.classList.toggle("active", o === b); });
      $("panel-show").hidden = mode !== "show";
      $("panel-tell").hidden = mode !== "tell";
    });
  });

  $("upload").addEventListener("change", function (e) {
    var f = e.target.files[0];
    if (!f) { upload = null; return; }
    var r = new FileReader();
    r.onload = function () {
      upload = { name: f.name, data: r.result };
      $("example").value = "";
      $("preview").src = r.result;
      $("preview").hidden = false;
    };
    r.readAsDataURL(f);
  });

  $("example").addEventListener("change", function (e) {
    if (!e.target.value) { $("preview").hidden = true; return; }
    upload = null;
    $("upload").value = "";
    $("preview").src = "/examples/" + e.target.value + ".png";
    $("preview").hidden = false;
  });

  $("build").addEventListener("click", function () {
    $("messages").innerHTML = "";
    $("stream").textContent = "";
    $("result").innerHTML = "";
    var req = { type: "build", mode: mode };
    if (mode === "tell") {
      req.text = $("text").value;
    } else if ($("example").value) {
      req.example = $("example").value;
    } else if (upload) {
      req.image = upload;
    }
    setRunning(true);
    ws.send(JSON.stringify(req));
  });

  $("cancel").addEventListener("click", function () {
    ws.send(JSON.stringify({ type: "cancel" }));
  });

  $("clear").addEventListener("click", function () {
    $("messages").innerHTML = "";
    $("stream").textContent = "";
    $("result").innerHTML = "";
  });

  ws.onmessage = function (ev) {
    var f = JSON.parse(ev.data);
    switch (f.type) {
    case "fragment":
      $("stream").textContent += f.data;
      break;
    case "done":
      $("stream").textContent = "";
      $("result").innerHTML = f.html;
      setRunning(false);
      break;
    case "warning":
    case "error":
      note(f.type, f.data);
      setRunning(false);
      break;
    }
  };
  ws.onclose = function () {
    if (running) { note("error", "Connection closed."); }
    setRunning(false);
  };
})();
</script>
</body>
</html>
`
