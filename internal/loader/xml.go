package loader

import "encoding/xml"

// The following mirror the block-XML document shape spec.md's External
// Interfaces section defines: a root <xml> holding a <variables> block
// and a forest of <block> elements, each block carrying <field>,
// <value>, and <statement> children plus an optional <next> sibling
// chain. No third-party XML library exists anywhere in the example
// corpus (verified against every go.mod in the retrieved pack), so this
// parses with the standard library's encoding/xml — see DESIGN.md for
// the stdlib-fallback justification.

type programXML struct {
	XMLName   xml.Name     `xml:"xml"`
	Variables variablesXML `xml:"variables"`
	Blocks    []blockXML   `xml:"block"`
}

type variablesXML struct {
	Variables []variableXML `xml:"variable"`
}

type variableXML struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

type blockXML struct {
	Type       string         `xml:"type,attr"`
	ID         string         `xml:"id,attr"`
	Fields     []fieldXML     `xml:"field"`
	Values     []valueXML     `xml:"value"`
	Statements []statementXML `xml:"statement"`
	Next       *nextXML       `xml:"next"`
}

type fieldXML struct {
	Name         string `xml:"name,attr"`
	ID           string `xml:"id,attr"`
	VariableType string `xml:"variabletype,attr"`
	Text         string `xml:",chardata"`
}

type valueXML struct {
	Name   string     `xml:"name,attr"`
	Block  *blockXML  `xml:"block"`
	Shadow *shadowXML `xml:"shadow"`
}

type shadowXML struct {
	Field *fieldXML `xml:"field"`
}

type statementXML struct {
	Name  string    `xml:"name,attr"`
	Block *blockXML `xml:"block"`
}

type nextXML struct {
	Block *blockXML `xml:"block"`
}
