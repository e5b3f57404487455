package harness

import "github.com/isdmx/questbox/protocol"

// Primitive describes one game action callable from student code.
type Primitive struct {
	// Name is the Python function name.
	Name string
	// Tag is the action tag written into the record.
	Tag string
	// Param is the single parameter name, empty for no parameter.
	Param string
	// Field is the record key that receives str(Param).
	Field string
}

// Primitives is the closed set of game actions available to student code.
var Primitives = []Primitive{
	{Name: "open_door", Tag: protocol.ActionOpenDoor},
	{Name: "move_to", Tag: protocol.ActionMove, Param: "location", Field: "location"},
	{Name: "collect_item", Tag: protocol.ActionCollect, Param: "item_name", Field: "item"},
	{Name: "show_message", Tag: protocol.ActionMessage, Param: "message", Field: "text"},
}

// ResultVariable is the name student code assigns to return an explicit result.
const ResultVariable = "result"

// reservedNames cannot be used as context variable names.
var reservedNames = func() map[string]bool {
	names := map[string]bool{ResultVariable: true}
	for _, p := range Primitives {
		names[p.Name] = true
	}
	return names
}()

// LookupPrimitive returns the primitive with the given Python name.
func LookupPrimitive(name string) (Primitive, bool) {
	for _, p := range Primitives {
		if p.Name == name {
			return p, true
		}
	}
	return Primitive{}, false
}
