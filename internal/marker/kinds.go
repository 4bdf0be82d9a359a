package marker

// Kind enumerates the closed set of block kinds the engine understands.
type Kind string

const (
	KindParagraph    Kind = "paragraph"
	KindFree         Kind = "free"
	KindList         Kind = "list"
	KindNumberedList Kind = "numbered-list"
	KindTaskList     Kind = "task-list"
	KindTable        Kind = "table"
	KindHeading      Kind = "heading"
	KindCode         Kind = "code"
	KindIDDefinition Kind = "id"
	KindIDReference  Kind = "id-ref"
	KindInstructions Kind = "instructions"
	KindIDLine       Kind = "id-line"
	KindRefLine      Kind = "ref-line"
)

var knownKinds = map[Kind]struct{}{
	KindParagraph:    {},
	KindFree:         {},
	KindList:         {},
	KindNumberedList: {},
	KindTaskList:     {},
	KindTable:        {},
	KindHeading:      {},
	KindCode:         {},
	KindIDDefinition: {},
	KindIDReference:  {},
	KindInstructions: {},
	KindIDLine:       {},
	KindRefLine:      {},
}

// Kinds returns every recognised kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindParagraph, KindFree, KindList, KindNumberedList, KindTaskList,
		KindTable, KindHeading, KindCode, KindIDDefinition, KindIDReference,
		KindInstructions, KindIDLine, KindRefLine,
	}
}

// Valid reports whether k is part of the enumeration.
func (k Kind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// SelfContained reports whether markers of this kind stand alone on a
// single line instead of appearing as an open/close pair.
func (k Kind) SelfContained() bool {
	return k == KindIDLine || k == KindRefLine
}

// DefinesIdentifier reports whether blocks of this kind declare an ID.
func (k Kind) DefinesIdentifier() bool {
	return k == KindIDDefinition || k == KindIDLine
}

// ReferencesIdentifiers reports whether blocks of this kind cite IDs.
func (k Kind) ReferencesIdentifiers() bool {
	return k == KindIDReference || k == KindRefLine
}

func (k Kind) String() string { return string(k) }
