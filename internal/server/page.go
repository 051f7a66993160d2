package server

// hostPage mounts the wasm viewer on a full-window canvas and reloads when
// the server reports a payload change.
const hostPage = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Mind cloud</title>
<style>
  html, body { margin: 0; height: 100%; background: #0b0e14; overflow: hidden; }
  #mindcloud { display: block; width: 100vw; height: 100vh; touch-action: none; }
  #detail { position: fixed; top: 0; right: 0; width: 360px; height: 100%; padding: 24px;
    box-sizing: border-box; background: #121722; color: #eaeef3; font: 15px system-ui, sans-serif;
    transform: translateX(100%); transition: transform 250ms ease; }
  #detail.open { transform: none; }
  @media (min-width: 720px) {
    body.detail-open #mindcloud { width: calc(100vw - 360px); }
  }
  #detail button { float: right; background: none; border: 0; color: inherit; font-size: 20px; cursor: pointer; }
</style>
</head>
<body>
<canvas id="mindcloud"></canvas>
<aside id="detail"><button id="detail-close" aria-label="Close">&times;</button><div id="detail-body"></div></aside>
<script src="/wasm_exec.js"></script>
<script>
  const go = new Go();
  WebAssembly.instantiateStreaming(fetch("/app.wasm"), go.importObject)
    .then((r) => go.run(r.instance))
    .catch((err) => console.error("mindcloud:", err));

  (function reload() {
    const proto = location.protocol === "https:" ? "wss:" : "ws:";
    const ws = new WebSocket(proto + "//" + location.host + "/ws/reload");
    ws.onopen = () => ws.send(JSON.stringify({ type: "HELLO" }));
    ws.onmessage = (ev) => {
      const msg = JSON.parse(ev.data);
      if (msg.type === "RELOAD") location.reload();
    };
    ws.onclose = () => setTimeout(reload, 2000);
  })();
</script>
</body>
</html>
`
