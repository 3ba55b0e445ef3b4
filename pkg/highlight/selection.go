package highlight

// Selection is the two-state selection machine: Unselected or
// Selected(key). It has no terminal state.
type Selection struct {
	key      string
	selected bool

	// OnChange, if set, receives every transition: the new key and
	// whether anything is selected.
	OnChange func(key string, selected bool)
}

// Selected returns the selected key.
func (s *Selection) Selected() (string, bool) {
	return s.key, s.selected
}

// Click handles a click on node key: selecting it, moving the selection to
// it, or clearing the selection when it is already selected.
func (s *Selection) Click(key string) {
	if s.selected && s.key == key {
		s.set("", false)
		return
	}
	s.set(key, true)
}

// ClickBackground clears the selection.
func (s *Selection) ClickBackground() {
	if !s.selected {
		return
	}
	s.set("", false)
}

// Select forces Selected(key) without toggling, as for keyboard navigation.
func (s *Selection) Select(key string) {
	if s.selected && s.key == key {
		return
	}
	s.set(key, true)
}

// Clear forces Unselected.
func (s *Selection) Clear() {
	s.ClickBackground()
}

func (s *Selection) set(key string, selected bool) {
	s.key, s.selected = key, selected
	if s.OnChange != nil {
		s.OnChange(key, selected)
	}
}
