package pipeline

// Text-mode tables for the native converter. Keys are command names without
// the backslash.

// textSymbols expand to literal text.
var textSymbols = map[string]string{
	"%": "%", "$": "$", "&": "&", "#": "#", "_": "_", "{": "{", "}": "}",
	" ": " ", ",": " ", ";": " ", ":": " ", "-": "", "/": "", "@": "",
	"ldots": "…", "dots": "…", "textellipsis": "…",
	"textbackslash": "\\", "textasciitilde": "~", "textasciicircum": "^",
	"textbar": "|", "textless": "<", "textgreater": ">", "textbullet": "•",
	"textendash": "–", "textemdash": "—", "textdegree": "°",
	"textquoteleft": "‘", "textquoteright": "’",
	"textquotedblleft": "“", "textquotedblright": "”",
	"LaTeX": "LaTeX", "TeX": "TeX", "S": "§", "P": "¶",
	"copyright": "©", "textregistered": "®", "texttrademark": "™",
	"dag": "†", "ddag": "‡", "pounds": "£", "euro": "€",
	"quad": " ", "qquad": "  ", "enspace": " ",
	"i": "ı", "j": "ȷ", "ss": "ß", "ae": "æ", "AE": "Æ", "oe": "œ", "OE": "Œ",
	"o": "ø", "O": "Ø", "aa": "å", "AA": "Å", "l": "ł", "L": "Ł",
}

// textAccents map accent commands to combining characters.
var textAccents = map[string]string{
	"'": "́", "`": "̀", "^": "̂", "\"": "̈",
	"~": "̃", "=": "̄", ".": "̇", "u": "̆",
	"v": "̌", "H": "̋", "r": "̊", "c": "̧", "k": "̨",
}

// inlineWrappers take one argument and wrap it in an element. An empty tag
// keeps the content without a wrapper.
var inlineWrappers = map[string]string{
	"textbf": "strong", "textit": "em", "emph": "em", "textsl": "em",
	"texttt": "code", "underline": "u",
	"textsuperscript": "sup", "textsubscript": "sub", "textsc": "span",
	"textrm": "", "textsf": "", "textup": "", "textmd": "", "textnormal": "",
	"mbox": "", "text": "", "hbox": "",
}

// fontDeclarations switch style until the end of the enclosing group.
var fontDeclarations = map[string]string{
	"bfseries": "strong", "bf": "strong",
	"itshape": "em", "it": "em", "em": "em", "slshape": "em", "sl": "em",
	"ttfamily": "code", "tt": "code", "scshape": "span",
	"normalfont": "", "rmfamily": "", "sffamily": "", "upshape": "", "mdseries": "",
}

// sectionLevels maps sectioning commands to heading elements. Fragments are
// embedded in a page that owns h1 and h2.
var sectionLevels = map[string]string{
	"section":       "h3",
	"subsection":    "h4",
	"subsubsection": "h5",
	"paragraph":     "h6",
}

// ignoredCommands take no argument and produce nothing.
var ignoredCommands = map[string]bool{
	"noindent": true, "indent": true, "centering": true, "raggedright": true,
	"raggedleft": true, "smallskip": true, "medskip": true, "bigskip": true,
	"vfill": true, "hfill": true, "clearpage": true, "newpage": true,
	"pagebreak": true, "nopagebreak": true, "relax": true, "protect": true,
	"leavevmode": true, "allowbreak": true, "nobreak": true, "maketitle": true,
	"tiny": true, "scriptsize": true, "footnotesize": true, "small": true,
	"normalsize": true, "large": true, "Large": true, "LARGE": true,
	"huge": true, "Huge": true, "hline": true, "toprule": true,
	"midrule": true, "bottomrule": true, "displaystyle": true, "null": true,
}

// ignoredWithArgs consume the given number of brace arguments.
var ignoredWithArgs = map[string]int{
	"label": 1, "vspace": 1, "index": 1, "pagestyle": 1, "thispagestyle": 1,
	"phantom": 1, "hphantom": 1, "vphantom": 1, "graphicspath": 1,
	"setlength": 2, "addtolength": 2, "setcounter": 2, "addtocounter": 2,
}
