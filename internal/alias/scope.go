package alias

// Scope maps cleaned entity names to aliases.
//
// A node scope extends its parent: Lookup falls back to the ancestors, while
// Len and Names only see the scope's own aliases.
type Scope struct {
	parent  *Scope
	names   []string
	aliases map[string]string
}

// NewScope creates an empty scope extending parent (nil for a root scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, aliases: make(map[string]string)}
}

// Parent returns the scope this one extends.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Set binds name to alias in this scope, shadowing any inherited alias.
func (s *Scope) Set(name, alias string) {
	name = CleanName(name)
	if _, ok := s.aliases[name]; !ok {
		s.names = append(s.names, name)
	}
	s.aliases[name] = alias
}

// Own returns the alias bound in this scope only.
func (s *Scope) Own(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	a, ok := s.aliases[CleanName(name)]
	return a, ok
}

// Lookup returns the alias for name from this scope or its ancestors.
func (s *Scope) Lookup(name string) (string, bool) {
	name = CleanName(name)
	for cur := s; cur != nil; cur = cur.parent {
		if a, ok := cur.aliases[name]; ok {
			return a, true
		}
	}
	return "", false
}

// Len returns the number of aliases owned by this scope.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the owned entity names in insertion order.
func (s *Scope) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Aliases returns a copy of the owned name to alias bindings.
func (s *Scope) Aliases() map[string]string {
	out := make(map[string]string, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.aliases {
		out[k] = v
	}
	return out
}
