package server

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  {{if .Loading}}<meta http-equiv="refresh" content="1">{{end}}
  <title>AI Symptom Checker</title>
  <style>
    :root {
      --bg: #f1f5f9;
      --panel: #ffffff;
      --text: #0f172a;
      --muted: #64748b;
      --accent: #0ea5e9;
      --bad: #e11d48;
      --info: #0369a1;
      --radius: 14px;
      font-family: "Segoe UI", "Helvetica Neue", sans-serif;
    }
    * { box-sizing: border-box; }
    body { margin: 0; min-height: 100vh; background: var(--bg); color: var(--text); }
    main { max-width: 760px; margin: 0 auto; padding: 32px 20px 64px; }
    h1 { margin: 0 0 6px; font-size: 28px; }
    .muted { color: var(--muted); }
    .panel { background: var(--panel); border-radius: var(--radius); padding: 20px; margin-top: 18px; box-shadow: 0 8px 24px rgba(15, 23, 42, 0.08); }
    textarea { width: 100%; min-height: 120px; padding: 12px; border: 1px solid #cbd5e1; border-radius: 10px; font: inherit; resize: vertical; }
    button { margin-top: 12px; padding: 10px 22px; border: 0; border-radius: 10px; background: var(--accent); color: #fff; font-weight: 600; cursor: pointer; }
    button:disabled { background: #94a3b8; cursor: not-allowed; }
    .hidden { display: none; }
    .loading { margin-top: 14px; color: var(--accent); font-weight: 600; }
    .message { margin-top: 14px; padding: 12px 16px; border-radius: 10px; color: #fff; animation: fade-out 0.5s ease forwards; }
    .message.error { background: var(--bad); }
    .message.info { background: var(--info); }
    .message.fading { animation-delay: 0s; }
    @keyframes fade-out { to { opacity: 0; visibility: hidden; } }
    .disclaimer { border-left: 4px solid var(--bad); padding-left: 12px; }
    .reasoning { font-style: italic; }
  </style>
</head>
<body>
  <main>
    <h1>AI Symptom Checker</h1>
    <p class="muted">For educational purposes only. Not a substitute for professional medical advice.</p>

    <form class="panel" id="symptom-form" method="post" action="/form">
      <label for="symptoms">Describe your symptoms</label>
      <textarea id="symptoms" name="symptoms" placeholder="e.g. headache, fever and a sore throat since yesterday"></textarea>
      <button id="check-btn" type="submit"{{if not .SubmitEnabled}} disabled{{end}}>Check Symptoms</button>
      <div id="loading" class="loading{{if not .Loading}} hidden{{end}}">Analyzing your symptoms...</div>
      {{with .Message}}
      <div id="message-box" class="message {{.Severity}}{{if .Fading}} fading{{end}}" style="animation-delay: {{.DismissInMS}}ms" role="alert">{{.Text}}</div>
      {{end}}
    </form>

    <section id="results" class="panel{{if not .ResultsVisible}} hidden{{end}}">
      <h2>Probable Conditions</h2>
      <ul id="conditions-list">
        {{range .Conditions}}<li>{{.}}</li>{{end}}
      </ul>
      <h2>Recommended Next Steps</h2>
      <ul id="steps-list">
        {{range .Steps}}<li>{{.}}</li>{{end}}
      </ul>
      <h2>Safety Disclaimer</h2>
      <div id="disclaimer-text" class="disclaimer">{{.Disclaimer}}</div>
      <h2>Reasoning</h2>
      <p id="reasoning-text" class="reasoning">{{.Reasoning}}</p>
    </section>
  </main>
  <script>
    document.getElementById('symptom-form').addEventListener('submit', function () {
      document.getElementById('check-btn').disabled = true;
      document.getElementById('loading').classList.remove('hidden');
    });
  </script>
</body>
</html>
`
