// Package patterns provides the embedded builtin rule definitions and the
// context keyword table. Each rule file declares one namespace; the loader
// in the rules package compiles them into a registry.
package patterns

import "embed"

//go:embed *.yml
var builtin embed.FS

// File is one embedded rule document.
type File struct {
	Name string
	Data []byte
}

// ruleFiles lists the rule documents in load order. keywords.yml is the
// context keyword table and is exposed separately via Keywords.
var ruleFiles = []string{
	"pii_kr.yml",
	"pii_us.yml",
	"pii_jp.yml",
	"pii_cn.yml",
	"pii_common.yml",
	"credentials.yml",
}

// Files returns the embedded rule documents.
func Files() []File {
	out := make([]File, 0, len(ruleFiles))
	for _, name := range ruleFiles {
		data, err := builtin.ReadFile(name)
		if err != nil {
			panic("patterns: missing embedded file " + name)
		}
		out = append(out, File{Name: name, Data: data})
	}
	return out
}

// Keywords returns the embedded context keyword table.
func Keywords() []byte {
	data, err := builtin.ReadFile("keywords.yml")
	if err != nil {
		panic("patterns: missing embedded keywords.yml")
	}
	return data
}
