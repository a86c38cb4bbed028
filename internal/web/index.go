package web

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>SceneScout</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; }
fieldset { margin-bottom: 1.5em; }
label { display: inline-block; width: 10em; }
input { margin-bottom: 0.5em; }
pre { background: #f4f4f4; padding: 0.5em; white-space: pre-wrap; }
li { font-family: monospace; }
</style>
</head>
<body>
<h1>SceneScout</h1>

<fieldset>
<legend>Process Videos</legend>
<label>Video directory</label><input id="videoDir" size="40"><br>
<label>Metadata directory</label><input id="metadataDir" size="40"><br>
<label>Frame skip</label><input id="frameSkip" type="number" value="30" min="1"><br>
<button onclick="process()">Start Processing</button>
<pre id="processLog"></pre>
</fieldset>

<fieldset>
<legend>Search Metadata</legend>
<label>Object to search</label><input id="query" size="40">
<button onclick="search()">Search</button>
<ul id="results"></ul>
</fieldset>

<script>
async function process() {
  const log = document.getElementById('processLog');
  log.textContent = 'Starting processing...';
  const resp = await fetch('/api/process', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({
      video_dir: document.getElementById('videoDir').value,
      metadata_dir: document.getElementById('metadataDir').value,
      frame_skip: parseInt(document.getElementById('frameSkip').value, 10)
    })
  });
  const body = await resp.json();
  log.textContent = resp.ok ? body.log + '\nProcessing complete.' : 'Error: ' + body.error;
}

async function search() {
  const list = document.getElementById('results');
  list.innerHTML = '';
  const q = document.getElementById('query').value;
  const dir = document.getElementById('metadataDir').value;
  const resp = await fetch('/api/search?q=' + encodeURIComponent(q) + '&dir=' + encodeURIComponent(dir));
  const body = await resp.json();
  if (!resp.ok) {
    list.innerHTML = '<li>Error: ' + body.error + '</li>';
    return;
  }
  if (body.length === 0) {
    list.innerHTML = '<li>No occurrences of "' + q + '" found.</li>';
    return;
  }
  for (const r of body) {
    const li = document.createElement('li');
    li.textContent = 'Video: ' + r.video + ', Time: ' + r.timestamp + ' sec, Object: ' + r.object +
      ', BBox: [' + r.bbox.join(', ') + '], Confidence: ' + r.confidence.toFixed(2);
    list.appendChild(li);
  }
}
</script>
</body>
</html>
`
