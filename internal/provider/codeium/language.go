package codeium

import "strings"

// Language is Codeium's language enumeration.
type Language int

const (
	LanguageUnspecified Language = iota
	LanguageC
	LanguageClojure
	LanguageCoffeeScript
	LanguageCPP
	LanguageCSharp
	LanguageCSS
	LanguageCUDACPP
	LanguageDockerfile
	LanguageGo
	LanguageGroovy
	LanguageHandlebars
	LanguageHaskell
	LanguageHCL
	LanguageHTML
	LanguageINI
	LanguageJava
	LanguageJavaScript
	LanguageJSON
	LanguageJulia
	LanguageKotlin
	LanguageLaTeX
	LanguageLess
	LanguageLua
	LanguageMakefile
	LanguageMarkdown
	LanguageObjectiveC
	LanguageObjectiveCPP
	LanguagePerl
	LanguagePHP
	LanguagePlainText
	LanguageProtobuf
	LanguagePBTXT
	LanguagePython
	LanguageR
	LanguageRuby
	LanguageRust
	LanguageSass
	LanguageScala
	LanguageSCSS
	LanguageShell
	LanguageSQL
	LanguageStarlark
	LanguageSwift
	LanguageTSX
	LanguageTypeScript
	LanguageVisualBasic
	LanguageVue
	LanguageXML
	LanguageXSL
	LanguageYAML
	LanguageSvelte
	LanguageTOML
	LanguageDart
	LanguageRST
	LanguageOCaml
	LanguageCMake
	LanguagePascal
	LanguageElixir
	LanguageFSharp
	LanguageLisp
	LanguageMATLAB
	LanguagePowerShell
	LanguageSolidity
	LanguageAda
	LanguageOCamlInterface
)

// Keys are LSP languageId values as sent by common editors.
var languages = map[string]Language{
	"c":                LanguageC,
	"clojure":          LanguageClojure,
	"coffeescript":     LanguageCoffeeScript,
	"cpp":              LanguageCPP,
	"csharp":           LanguageCSharp,
	"cs":               LanguageCSharp,
	"css":              LanguageCSS,
	"cuda":             LanguageCUDACPP,
	"cuda-cpp":         LanguageCUDACPP,
	"dockerfile":       LanguageDockerfile,
	"go":               LanguageGo,
	"groovy":           LanguageGroovy,
	"handlebars":       LanguageHandlebars,
	"haskell":          LanguageHaskell,
	"hcl":              LanguageHCL,
	"terraform":        LanguageHCL,
	"html":             LanguageHTML,
	"ini":              LanguageINI,
	"java":             LanguageJava,
	"javascript":       LanguageJavaScript,
	"javascriptreact":  LanguageJavaScript,
	"json":             LanguageJSON,
	"jsonc":            LanguageJSON,
	"julia":            LanguageJulia,
	"kotlin":           LanguageKotlin,
	"latex":            LanguageLaTeX,
	"tex":              LanguageLaTeX,
	"less":             LanguageLess,
	"lua":              LanguageLua,
	"makefile":         LanguageMakefile,
	"make":             LanguageMakefile,
	"markdown":         LanguageMarkdown,
	"objective-c":      LanguageObjectiveC,
	"objc":             LanguageObjectiveC,
	"objective-cpp":    LanguageObjectiveCPP,
	"objcpp":           LanguageObjectiveCPP,
	"perl":             LanguagePerl,
	"php":              LanguagePHP,
	"plaintext":        LanguagePlainText,
	"text":             LanguagePlainText,
	"proto":            LanguageProtobuf,
	"protobuf":         LanguageProtobuf,
	"pbtxt":            LanguagePBTXT,
	"python":           LanguagePython,
	"r":                LanguageR,
	"ruby":             LanguageRuby,
	"rust":             LanguageRust,
	"sass":             LanguageSass,
	"scala":            LanguageScala,
	"scss":             LanguageSCSS,
	"shellscript":      LanguageShell,
	"sh":               LanguageShell,
	"bash":             LanguageShell,
	"zsh":              LanguageShell,
	"sql":              LanguageSQL,
	"starlark":         LanguageStarlark,
	"bzl":              LanguageStarlark,
	"swift":            LanguageSwift,
	"typescriptreact":  LanguageTSX,
	"tsx":              LanguageTSX,
	"typescript":       LanguageTypeScript,
	"vb":               LanguageVisualBasic,
	"vue":              LanguageVue,
	"xml":              LanguageXML,
	"xsl":              LanguageXSL,
	"yaml":             LanguageYAML,
	"svelte":           LanguageSvelte,
	"toml":             LanguageTOML,
	"dart":             LanguageDart,
	"restructuredtext": LanguageRST,
	"rst":              LanguageRST,
	"ocaml":            LanguageOCaml,
	"ocaml.interface":  LanguageOCamlInterface,
	"cmake":            LanguageCMake,
	"pascal":           LanguagePascal,
	"elixir":           LanguageElixir,
	"fsharp":           LanguageFSharp,
	"lisp":             LanguageLisp,
	"commonlisp":       LanguageLisp,
	"matlab":           LanguageMATLAB,
	"powershell":       LanguagePowerShell,
	"solidity":         LanguageSolidity,
	"ada":              LanguageAda,
}

// LanguageFor maps an LSP languageId to Codeium's enumeration. Unknown ids map
// to LanguageUnspecified.
func LanguageFor(languageID string) Language {
	if l, ok := languages[strings.ToLower(strings.TrimSpace(languageID))]; ok {
		return l
	}
	return LanguageUnspecified
}
