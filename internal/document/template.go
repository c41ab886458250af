package document

import "html/template"

// Fixed-width layout for 58mm thermal paper. The documents are fully
// self-contained: styling and the print trigger script travel with the
// markup, so the print surface needs nothing else.

var labelTemplate = template.Must(template.New("label").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Etiqueta {{.Domain}}</title>
<style>
  @page { margin: 0; }
  body { margin: 0; font-family: Arial, sans-serif; }
  .label { width: 58mm; padding: 2mm; text-align: center; }
  .header { font-size: 11px; font-weight: bold; border-bottom: 1px solid #808080; padding-bottom: 2px; }
  .label img { width: 45mm; margin: 2mm 0; }
  .info { font-size: 10px; text-align: left; }
  .info .domain { font-weight: bold; font-size: 12px; text-align: center; }
  .footer { font-size: 9px; color: #666; border-top: 1px solid #808080; margin-top: 2mm; padding-top: 1mm; }
</style>
</head>
<body>
<div class="label">
  <div class="header">{{.Header}}</div>
  <img id="label-qr" src="{{.Image}}" alt="QR {{.Domain}}">
  <div class="info">
    <div class="domain">{{.Domain}}</div>
    {{if .MakeModel}}<div>{{.MakeModel}}</div>{{end}}
    {{if .ServiceDate}}<div>Service: {{.ServiceDate}}</div>{{end}}
    {{if .NextService}}<div>Pr&oacute;ximo: {{.NextService}}</div>{{end}}
  </div>
  <div class="footer">
    {{if .ChangeNumber}}<span>Cambio #{{.ChangeNumber}}</span> &middot; {{end}}<span>{{.PrintedAt}}</span>
  </div>
</div>
{{if .Autoprint}}
<script>
(function() {
  var img = document.getElementById("label-qr");
  var done = false;
  function fire() {
    if (done) return;
    done = true;
    window.print();
  }
  var poll = setInterval(function() {
    if (img.complete) {
      clearInterval(poll);
      fire();
    }
  }, {{.PollMS}});
  setTimeout(function() {
    clearInterval(poll);
    fire();
  }, {{.TimeoutMS}});
})();
</script>
{{end}}
</body>
</html>
`))

var batchTemplate = template.Must(template.New("batch").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Etiquetas ({{len .Cells}})</title>
<style>
  @page { margin: 5mm; }
  body { margin: 0; font-family: Arial, sans-serif; }
  .grid { display: grid; grid-template-columns: repeat(2, 58mm); gap: 4mm; }
  .cell { text-align: center; border: 1px dashed #ccc; padding: 2mm; page-break-inside: avoid; }
  .cell img { width: 40mm; }
  .cell .domain { font-size: 11px; font-weight: bold; }
  .cell .meta { font-size: 9px; color: #666; }
</style>
</head>
<body>
<div class="header" style="font-size:12px;font-weight:bold;margin-bottom:3mm;">{{.Header}}</div>
<div class="grid">
{{range .Cells}}  <div class="cell">
    <img src="{{.Image}}" alt="QR {{.Domain}}">
    <div class="domain">{{.Domain}}</div>
    {{if .Meta}}<div class="meta">{{.Meta}}</div>{{end}}
  </div>
{{end}}</div>
{{if .Autoprint}}
<script>
setTimeout(function() { window.print(); }, {{.SettleMS}});
</script>
{{end}}
</body>
</html>
`))
