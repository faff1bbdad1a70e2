package pipeline

import (
	"path"
	"regexp"
	"strings"
)

// Default figure layout served by the web application.
const (
	DefaultFiguresDir      = "figures"
	DefaultFigureURLPrefix = "/static/figures"
	DefaultFigureExtension = "png"
)

// imgSrcAttr matches the src attribute of an <img> tag, double or single quoted.
var imgSrcAttr = regexp.MustCompile(`(?i)(<img\b[^>]*?\ssrc\s*=\s*)(?:"([^"]*)"|'([^']*)')`)

// ImageRewriter points converter image references at the static asset layout.
// The zero value is not usable; create with NewImageRewriter.
type ImageRewriter struct {
	figuresDir string // relative directory used in LaTeX sources, e.g. "figures"
	urlPrefix  string // served location, e.g. "/static/figures"
	extension  string // canonical served extension, without dot
}

// NewImageRewriter creates an ImageRewriter. Empty arguments take the defaults.
func NewImageRewriter(figuresDir, urlPrefix, extension string) *ImageRewriter {
	if figuresDir == "" {
		figuresDir = DefaultFiguresDir
	}
	if urlPrefix == "" {
		urlPrefix = DefaultFigureURLPrefix
	}
	if extension == "" {
		extension = DefaultFigureExtension
	}
	if strings.Contains(urlPrefix, "://") {
		urlPrefix = strings.TrimRight(urlPrefix, "/")
	} else {
		urlPrefix = "/" + strings.Trim(urlPrefix, "/")
	}
	return &ImageRewriter{
		figuresDir: strings.Trim(figuresDir, "/"),
		urlPrefix:  urlPrefix,
		extension:  strings.TrimPrefix(extension, "."),
	}
}

// RewriteImages rewrites img src values with the default layout.
func RewriteImages(htmlContent string) string {
	return NewImageRewriter("", "", "").RewriteImages(htmlContent)
}

// RewriteImages rewrites the src attribute of every <img> tag. Bytes outside
// the attribute values are left as they were.
//
// Rewrites:
//   - figures/<name>.<ext>  -> <prefix>/<name>.<canonical ext>
//   - static/figures/...    -> /static/figures/... (missing leading slash)
//
// Anything else (absolute paths, URLs, data URIs) passes through.
func (r *ImageRewriter) RewriteImages(htmlContent string) string {
	if !strings.Contains(strings.ToLower(htmlContent), "<img") {
		return htmlContent
	}

	return imgSrcAttr.ReplaceAllStringFunc(htmlContent, func(tag string) string {
		m := imgSrcAttr.FindStringSubmatch(tag)
		quote, value := `"`, m[2]
		if strings.HasPrefix(tag[len(m[1]):], "'") {
			quote, value = "'", m[3]
		}
		return m[1] + quote + r.RewriteSrc(value) + quote
	})
}

// RewriteSrc applies the rewrite rules to a single src value.
func (r *ImageRewriter) RewriteSrc(src string) string {
	rel := strings.TrimPrefix(src, "./")

	if name, ok := strings.CutPrefix(rel, r.figuresDir+"/"); ok && name != "" {
		return r.urlPrefix + "/" + replaceExt(name, r.extension)
	}

	servedRel := strings.TrimPrefix(r.urlPrefix, "/") + "/"
	if !strings.Contains(r.urlPrefix, "://") && strings.HasPrefix(src, servedRel) {
		return "/" + src
	}

	return src
}

// replaceExt swaps the extension of the last path element, adding one if absent.
func replaceExt(name, ext string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	return base + "." + ext
}
