package coordinator

import "reflect"

// Resource is the coordinator's view of a loader. *loader.Loader satisfies it.
type Resource interface {
	Path() string
	IsLoaded() bool
	IsBusy() bool
	IsFailed() bool
	Activate(onSettled func())
}

// Slot is one narrative section. It is either empty (the section has no
// chart) or bound to the resource that draws its chart.
type Slot struct {
	resource Resource
}

// Empty returns a slot with no chart.
func Empty() Slot {
	return Slot{}
}

// Bound returns a slot backed by r. A nil r, including a nil pointer held in
// the interface, yields an empty slot.
func Bound(r Resource) Slot {
	if r == nil {
		return Slot{}
	}
	if v := reflect.ValueOf(r); v.Kind() == reflect.Pointer && v.IsNil() {
		return Slot{}
	}
	return Slot{resource: r}
}

// IsEmpty reports whether the section has no chart.
func (s Slot) IsEmpty() bool {
	return s.resource == nil
}

// Resource returns the bound resource and true, or nil and false for an
// empty slot.
func (s Slot) Resource() (Resource, bool) {
	return s.resource, s.resource != nil
}
