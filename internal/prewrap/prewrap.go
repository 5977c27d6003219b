// Package prewrap turns non-HTML text inputs into minimal HTML documents
// so the browser can load and render them. Inputs are charset-detected and
// decoded to UTF-8 before wrapping, so legacy-encoded files survive the
// trip through the renderer intact.
package prewrap

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// htmlShell wraps a body fragment in a complete HTML5 document.
const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document</title>
</head>
<body>
%s
</body>
</html>
`

// Text wraps plain text files (.txt, .log, .xml and friends) in a <pre>
// block with all markup escaped.
type Text struct{}

// Wrap reads inputPath, decodes it to UTF-8 and writes the wrapped HTML
// document to outputPath. An empty encoding means detect.
func (Text) Wrap(inputPath, outputPath, encoding string) error {
	content, err := readDecoded(inputPath, encoding)
	if err != nil {
		return err
	}
	body := "<pre>" + html.EscapeString(content) + "</pre>"
	return writeWrapped(outputPath, body)
}

// readDecoded loads a file and converts it to UTF-8, detecting the source
// charset when none is given. Unknown charsets pass through unchanged
// rather than failing the conversion.
func readDecoded(path, encoding string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- input path was validated by the orchestrator
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	name := encoding
	if name == "" {
		detector := chardet.NewTextDetector()
		if best, detErr := detector.DetectBest(data); detErr == nil {
			name = best.Charset
		}
	}
	if name == "" || strings.EqualFold(name, "utf-8") {
		return string(data), nil
	}

	enc, err := htmlindex.Get(strings.ToLower(name))
	if err != nil {
		// Charset the encoding index does not know; keep the raw bytes.
		return string(data), nil
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s input: %w", name, err)
	}
	return string(decoded), nil
}

// writeWrapped writes a body fragment as a complete document.
func writeWrapped(outputPath, body string) error {
	doc := fmt.Sprintf(htmlShell, body)
	if err := os.WriteFile(outputPath, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("writing wrapped document: %w", err)
	}
	return nil
}
