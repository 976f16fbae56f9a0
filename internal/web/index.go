package web

// Single-page dashboard: price rows plus a feed of fired alarms.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>coinwatch</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --bg:#1e1e1e; --ink:#f0f0f0; --up:#32cd32; --down:#ff4500; --soft:#8a8a8a; }
    * { box-sizing:border-box; }
    body { margin:0; padding:2rem; background:var(--bg); color:var(--ink); font-family:'JetBrains Mono',monospace; }
    h1 { font-size:1rem; letter-spacing:.2em; color:var(--soft); }
    table { border-collapse:collapse; min-width:22rem; }
    td { padding:.35rem .8rem; }
    td.price { text-align:right; }
    td.price small { color:var(--soft); }
    .green { color:var(--up); } .red { color:var(--down); } .neutral { color:var(--ink); }
    #status { color:var(--down); min-height:1.2rem; margin:.5rem 0; }
    #alarms { list-style:none; padding:0; max-width:40rem; }
    #alarms li { border-left:3px solid var(--down); padding:.3rem .6rem; margin:.3rem 0; }
    #alarms time { color:var(--soft); margin-right:.6rem; }
    a { color:inherit; text-decoration:none; }
  </style>
</head>
<body>
  <h1>COINWATCH <span id="interval"></span></h1>
  <div id="status"></div>
  <table><tbody id="coins"><tr><td>loading...</td></tr></tbody></table>
  <h1>ALARMS</h1>
  <ul id="alarms"></ul>
<script>
const glyph = { up:'▲', down:'▼', flat:'●' };

function renderQuotes(snap) {
  document.getElementById('interval').textContent = snap.interval ? '(' + snap.interval + ')' : '';
  document.getElementById('status').textContent = snap.status || '';
  const body = document.getElementById('coins');
  body.innerHTML = '';
  if (!snap.coins || snap.coins.length === 0) {
    body.innerHTML = '<tr><td>no prices yet</td></tr>';
    return;
  }
  for (const c of snap.coins) {
    const tr = document.createElement('tr');
    const pct = Number(c.percent_change).toFixed(2);
    tr.innerHTML =
      '<td>' + c.symbol + '</td>' +
      '<td class="price">$' + c.integer + '<small>' + c.fraction + '</small></td>' +
      '<td class="' + c.color + '">' + glyph[c.arrow] + ' ' + pct + '%</td>';
    body.appendChild(tr);
  }
}

function addAlarm(ev) {
  const li = document.createElement('li');
  const t = document.createElement('time');
  t.textContent = new Date(ev.ts).toLocaleString();
  li.appendChild(t);
  li.appendChild(document.createTextNode(ev.message + ' (price ' + ev.price + ')'));
  const list = document.getElementById('alarms');
  list.insertBefore(li, list.firstChild);
}

const quotes = new EventSource('/quotes/stream');
quotes.addEventListener('quotes', e => renderQuotes(JSON.parse(e.data)));
quotes.addEventListener('no_data', () => renderQuotes({ coins: [] }));

const alarms = new EventSource('/alarms/stream');
alarms.addEventListener('alarm', e => addAlarm(JSON.parse(e.data)));
</script>
</body>
</html>
`
