package core

// Type is the kind of payload an Item carries. The set is closed.
type Type string

const (
	TypeImage   Type = "image"
	TypeText    Type = "text"
	TypeHTML    Type = "html"
	TypeCode    Type = "code"
	TypeCapture Type = "capture"
	TypeCustom  Type = "custom"
)

var allTypes = []Type{TypeImage, TypeText, TypeHTML, TypeCode, TypeCapture, TypeCustom}

func (t Type) Valid() bool {
	for _, v := range allTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Source records which acquisition path produced an item.
type Source string

const (
	SourceClipboard Source = "clipboard"
	SourceCapture   Source = "capture"
	SourceCustom    Source = "custom"
)

func (s Source) Valid() bool {
	switch s {
	case "", SourceClipboard, SourceCapture, SourceCustom:
		return true
	}
	return false
}
