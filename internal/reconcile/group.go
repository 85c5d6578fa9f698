package reconcile

// Resolver is an edit whose value type has been erased.
type Resolver interface {
	Commit()
	Fail()
}

// Group resolves several edits that travel in one request, so they are
// confirmed or rolled back together.
type Group []Resolver

// Commit confirms every proposed value.
func (g Group) Commit() {
	for _, r := range g {
		if r != nil {
			r.Commit()
		}
	}
}

// Fail rolls back every edit.
func (g Group) Fail() {
	for _, r := range g {
		if r != nil {
			r.Fail()
		}
	}
}
