package simple

import (
	"slices"
	"sync"
)

// Todo is a single item in the list.
type Todo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type todoStore struct {
	mu    sync.Mutex
	next  int
	items []Todo
}

func (s *todoStore) add(title string) Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	t := Todo{ID: s.next, Title: title}
	s.items = append(s.items, t)
	return t
}

// toggle flips the done flag and reports whether the item exists.
func (s *todoStore) toggle(id int) (Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Done = !s.items[i].Done
			return s.items[i], true
		}
	}
	return Todo{}, false
}

func (s *todoStore) remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(t Todo) bool { return t.ID == id })
	return len(s.items) != n
}

func (s *todoStore) list() []Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}
