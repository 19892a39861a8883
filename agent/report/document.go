package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

const Title = "Smart DFD - System Report"

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Run}}</title>
<style>
@page { size: A4; margin: 50px; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; }
h1 { font-size: 16pt; }
pre { white-space: pre-wrap; font-family: Helvetica, Arial, sans-serif; }
.diagram { page-break-before: always; break-before: page; }
.diagram img { max-width: 100%; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<pre>{{.Report}}</pre>
{{- if .Image}}
<div class="diagram"><img src="{{.Image}}" alt="Generated DFD {{.Run}}"></div>
{{- end}}
</body>
</html>
`))

type documentData struct {
	Title  string
	Run    string
	Report string
	Image  template.URL
}

// DocumentWriter renders a printable HTML report with the diagram embedded.
type DocumentWriter struct {
	fs  afero.Fs
	dir string
}

var _ contractx.DocumentWriter = (*DocumentWriter)(nil)

func NewDocumentWriter(fs afero.Fs, dir string) *DocumentWriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DocumentWriter{fs: fs, dir: dir}
}

// WriteDocument writes <dir>/<base>.html. When the image cannot be read the
// document is still produced, just without the diagram.
func (w *DocumentWriter) WriteDocument(id contractx.RunIdentity, report string, imagePath string) (string, error) {
	data := documentData{
		Title:  Title,
		Run:    id.BaseName(),
		Report: report,
		Image:  w.embedImage(imagePath),
	}

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: render document: %v", contractx.ErrStorage, err)
	}

	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", contractx.ErrStorage, w.dir, err)
	}
	path := filepath.Join(w.dir, id.BaseName()+".html")
	if err := afero.WriteFile(w.fs, path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%w: write document %s: %v", contractx.ErrStorage, path, err)
	}
	return path, nil
}

func (w *DocumentWriter) embedImage(path string) template.URL {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	raw, err := afero.ReadFile(w.fs, path)
	if err != nil || len(raw) == 0 {
		logx.Debug().Err(err).Str("path", path).Msg("document written without image")
		return ""
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "image/png"
	}
	return template.URL("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw))
}
