package svg

// Namespace URIs used for element creation.
const (
	HTMLNamespace = "http://www.w3.org/1999/xhtml"
	SVGNamespace  = "http://www.w3.org/2000/svg"
)

// svgElements are element names that exist only in the SVG namespace.
var svgElements = map[string]bool{
	"animate":             true,
	"animateMotion":       true,
	"animateTransform":    true,
	"circle":              true,
	"clipPath":            true,
	"defs":                true,
	"desc":                true,
	"ellipse":             true,
	"feBlend":             true,
	"feColorMatrix":       true,
	"feComponentTransfer": true,
	"feComposite":         true,
	"feConvolveMatrix":    true,
	"feDiffuseLighting":   true,
	"feDisplacementMap":   true,
	"feDistantLight":      true,
	"feDropShadow":        true,
	"feFlood":             true,
	"feFuncA":             true,
	"feFuncB":             true,
	"feFuncG":             true,
	"feFuncR":             true,
	"feGaussianBlur":      true,
	"feImage":             true,
	"feMerge":             true,
	"feMergeNode":         true,
	"feMorphology":        true,
	"feOffset":            true,
	"fePointLight":        true,
	"feSpecularLighting":  true,
	"feSpotLight":         true,
	"feTile":              true,
	"feTurbulence":        true,
	"filter":              true,
	"foreignObject":       true,
	"g":                   true,
	"image":               true,
	"line":                true,
	"linearGradient":      true,
	"marker":              true,
	"mask":                true,
	"metadata":            true,
	"mpath":               true,
	"path":                true,
	"pattern":             true,
	"polygon":             true,
	"polyline":            true,
	"radialGradient":      true,
	"rect":                true,
	"set":                 true,
	"stop":                true,
	"svg":                 true,
	"switch":              true,
	"symbol":              true,
	"text":                true,
	"textPath":            true,
	"tspan":               true,
	"use":                 true,
	"view":                true,
}

// dualElements exist in both namespaces; the creation namespace is decided
// by the surrounding context.
var dualElements = map[string]bool{
	"a":      true,
	"script": true,
	"style":  true,
	"title":  true,
}

// IsSVGElement returns true if tag exists only in the SVG namespace.
func IsSVGElement(tag string) bool {
	return svgElements[tag]
}

// IsDualElement returns true if tag exists in both namespaces.
func IsDualElement(tag string) bool {
	return dualElements[tag]
}

// Namespace returns the namespace URI in which tag should be created.
// inSVG says whether the nearest element ancestor lives in the SVG
// namespace; it only matters for dual-namespace names.
func Namespace(tag string, inSVG bool) string {
	if dualElements[tag] {
		if inSVG {
			return SVGNamespace
		}
		return HTMLNamespace
	}
	if svgElements[tag] {
		return SVGNamespace
	}
	return HTMLNamespace
}
