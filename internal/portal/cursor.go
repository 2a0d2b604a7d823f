// Package portal drives the schedule grid of the regional education portal.
//
// The portal keeps the selected group (or teacher) and week on the server, in
// a Livewire component memo. A Session converges that remote cursor to the
// requested search and week offset with as few calls as possible, then hands
// out the raw events of the selected week.
package portal

// Remote methods of the schedule grid component.
const (
	MethodSet       = "set"
	MethodMinusWeek = "minusWeek"
	MethodAddWeek   = "addWeek"
)

// Cursor is the remote selection: search key and week offset from the
// current week.
type Cursor struct {
	Search string
	Offset int
}

// Call is one remote method invocation.
type Call struct {
	Method string
	Params []string
}

// Next returns the call that moves current one step towards target, or false
// once they match. The search is changed first; offsets are then walked one
// week at a time.
func Next(current, target Cursor) (Call, bool) {
	switch {
	case current.Search != target.Search:
		return Call{Method: MethodSet, Params: []string{target.Search}}, true
	case current.Offset > target.Offset:
		return Call{Method: MethodMinusWeek}, true
	case current.Offset < target.Offset:
		return Call{Method: MethodAddWeek}, true
	default:
		return Call{}, false
	}
}

// Plan lists the calls needed to reach target assuming the remote applies
// each call exactly and keeps the offset when the search changes.
func Plan(current, target Cursor) []Call {
	var calls []Call
	for {
		call, ok := Next(current, target)
		if !ok {
			return calls
		}
		calls = append(calls, call)
		switch call.Method {
		case MethodSet:
			current.Search = target.Search
		case MethodMinusWeek:
			current.Offset--
		case MethodAddWeek:
			current.Offset++
		}
	}
}

// Kind selects the portal page and component for groups or teachers.
type Kind struct {
	Name        string
	Page        string
	Endpoint    string
	SearchField string
}

// Portal pages.
var (
	Groups = Kind{
		Name:        "groups",
		Page:        "/schedule/groups",
		Endpoint:    "/livewire/message/schedule-group-grid",
		SearchField: "group",
	}
	Teachers = Kind{
		Name:        "teachers",
		Page:        "/schedule/teachers",
		Endpoint:    "/livewire/message/schedule-teacher-grid",
		SearchField: "teacher",
	}
)
